// Package dialogue implements the per-turn conversation state machine:
// slot-filling, context continuation and switching, and queueing of
// generative-augmentation prompts for the transport layer.
package dialogue

import (
	"fmt"
	"strings"

	"ecommerce-chatbot/internal/backend"
	"ecommerce-chatbot/internal/common/logger"
	"ecommerce-chatbot/internal/common/metrics"
	"ecommerce-chatbot/internal/models"
	"ecommerce-chatbot/internal/nlu"
)

// Canned responses. These strings are part of the bot's contract and are
// asserted verbatim in tests.
const (
	responseGreeting      = "Hi! I'm your e-commerce assistant. You can ask me to track an order, start a return, or inquire about products."
	responseShippingFAQ   = "Our standard shipping is 3-5 business days. You can find more details here: [link]"
	responseAskTrackOrder = "Sure, I can help track your order. What is your 5-digit order number?"
	responseAskReturn     = "I can help with that. What is your 5-digit order number?"
	responseAskProduct    = "I can look up product information. What is the name of the product?"

	responseInvalidTrackNumber  = "That doesn't look like a valid order number. Please provide a 5-digit order number."
	responseInvalidReturnNumber = "I need a 5-digit order number to process a return."

	responseNotUnderstood = "I'm sorry, I didn't understand that. Please try again."
	responseOutOfScope    = "I'm sorry, I can only help with e-commerce questions, like tracking orders or processing returns."
	responseToxicity      = "I'm sorry you feel that way. How can I help with your order?"
	responseInjection     = "I'm sorry, I can't help with that."
	responseMedical       = "I am not a medical professional. Please consult a doctor for any health concerns."
	responseDefault       = "I'm not sure how to help with that."

	ackDraftEmail    = "One moment, I'll draft that email for you... ✨"
	ackSuggestOutfit = "Great choice! Let me think of a good outfit for that... ✨"
)

const (
	draftEmailSuggestionFmt = "\n\nIf you're concerned, you can ask me to '✨ Draft a support email about %s'."
	outfitSuggestionFmt     = "\n\nYou can also ask me to '✨ Suggest an outfit for %s'."
	draftEmailPromptFmt     = "A customer's order (%s) has a status of '%s'. Draft a polite but firm email to customer support asking for an update and inquiring about the delay."
	suggestOutfitPromptFmt  = "A customer is interested in a product: '%s' (Info: '%s'). Suggest a complete, stylish outfit (including other clothing items and accessories) that would go well with it."
)

// StateMachine decides the response text and next context for each turn.
// It issues read-only backend lookups and queues generative prompts in the
// returned context; it never contacts the augmentor itself.
type StateMachine struct {
	backend backend.Service
	logger  logger.Logger
}

func NewStateMachine(svc backend.Service, log logger.Logger) *StateMachine {
	return &StateMachine{
		backend: svc,
		logger:  log.WithFields(map[string]interface{}{"component": "dialogue"}),
	}
}

// Process handles one turn. It never fails for malformed input; the caller
// gets a user-facing string and the updated context for every message.
func (m *StateMachine) Process(convCtx models.ConversationContext, message string) (string, models.ConversationContext) {
	result := nlu.Recognize(message)
	response := responseDefault

	m.logger.Debug("turn recognized", map[string]interface{}{
		"intent":        string(result.Intent),
		"hasOrder":      result.Entities.OrderNumber != "",
		"hasProduct":    result.Entities.ProductName != "",
		"pendingAction": string(convCtx.PendingAction),
	})

	if convCtx.HasPending() {
		response, convCtx = m.resolveSlot(convCtx, result, message)

		// Context switch preempts slot-filling: when the same message reads
		// as a recognizable new intent, the pending action is cleared and
		// the dispatch below replaces whatever the slot resolution produced.
		if result.Intent == nlu.IntentOutOfScope {
			return response, convCtx
		}
		convCtx.PendingAction = models.PendingNone
	}

	return m.dispatch(convCtx, result, message)
}

// resolveSlot attempts to fill the pending slot from the current message.
func (m *StateMachine) resolveSlot(convCtx models.ConversationContext, result nlu.Result, message string) (string, models.ConversationContext) {
	switch convCtx.PendingAction {
	case models.PendingTrackOrder:
		orderID := result.Entities.OrderNumber
		if orderID == "" {
			orderID = nlu.ScanOrderNumber(message)
		}
		if orderID == "" {
			metrics.SlotClarificationsTotal.WithLabelValues(string(models.PendingTrackOrder)).Inc()
			return responseInvalidTrackNumber, convCtx
		}
		convCtx.PendingAction = models.PendingNone
		return m.trackWithSuggestion(orderID), convCtx

	case models.PendingReturnOrder:
		orderID := result.Entities.OrderNumber
		if orderID == "" {
			orderID = nlu.ScanOrderNumber(message)
		}
		if orderID == "" {
			metrics.SlotClarificationsTotal.WithLabelValues(string(models.PendingReturnOrder)).Inc()
			return responseInvalidReturnNumber, convCtx
		}
		convCtx.PendingAction = models.PendingNone
		return m.backend.ReturnEligible(orderID), convCtx

	case models.PendingProductInfo:
		// Always resolvable: the raw message doubles as the product name.
		productName := result.Entities.ProductName
		if productName == "" {
			productName = strings.TrimSpace(message)
		}
		convCtx.PendingAction = models.PendingNone
		return m.productInfoWithSuggestion(productName), convCtx
	}

	return responseDefault, convCtx
}

// dispatch routes a turn with no pending action to its intent handler.
func (m *StateMachine) dispatch(convCtx models.ConversationContext, result nlu.Result, message string) (string, models.ConversationContext) {
	switch result.Intent {
	case nlu.IntentGreet:
		return responseGreeting, convCtx

	case nlu.IntentFAQShipping:
		return responseShippingFAQ, convCtx

	case nlu.IntentTrackOrder:
		if result.Entities.OrderNumber == "" {
			convCtx.PendingAction = models.PendingTrackOrder
			metrics.SlotClarificationsTotal.WithLabelValues(string(models.PendingTrackOrder)).Inc()
			return responseAskTrackOrder, convCtx
		}
		convCtx.LastIntent = string(nlu.IntentTrackOrder)
		return m.trackWithSuggestion(result.Entities.OrderNumber), convCtx

	case nlu.IntentReturnItem:
		if result.Entities.OrderNumber == "" {
			convCtx.PendingAction = models.PendingReturnOrder
			metrics.SlotClarificationsTotal.WithLabelValues(string(models.PendingReturnOrder)).Inc()
			return responseAskReturn, convCtx
		}
		convCtx.LastIntent = string(nlu.IntentReturnItem)
		return m.backend.ReturnEligible(result.Entities.OrderNumber), convCtx

	case nlu.IntentProductInquiry:
		if result.Entities.ProductName == "" {
			convCtx.PendingAction = models.PendingProductInfo
			metrics.SlotClarificationsTotal.WithLabelValues(string(models.PendingProductInfo)).Inc()
			return responseAskProduct, convCtx
		}
		convCtx.LastIntent = string(nlu.IntentProductInquiry)
		return m.productInfoWithSuggestion(result.Entities.ProductName), convCtx

	case nlu.IntentGeminiDraftEmail:
		// Order number is guaranteed by the classifier rule.
		orderID := result.Entities.OrderNumber
		status := m.backend.Track(orderID)
		convCtx.GeminiPrompt = fmt.Sprintf(draftEmailPromptFmt, orderID, status)
		m.logger.Info("queued generative prompt", map[string]interface{}{
			"intent": string(nlu.IntentGeminiDraftEmail),
			"order":  orderID,
		})
		return ackDraftEmail, convCtx

	case nlu.IntentGeminiSuggestOutfit:
		productName := result.Entities.ProductName
		info := m.backend.GetProductInfo(productName)
		convCtx.GeminiPrompt = fmt.Sprintf(suggestOutfitPromptFmt, productName, info)
		m.logger.Info("queued generative prompt", map[string]interface{}{
			"intent":  string(nlu.IntentGeminiSuggestOutfit),
			"product": productName,
		})
		return ackSuggestOutfit, convCtx

	case nlu.IntentEmptyOrNonsensical:
		return responseNotUnderstood, convCtx

	case nlu.IntentToxicity:
		return responseToxicity, convCtx

	case nlu.IntentInjection:
		return responseInjection, convCtx

	case nlu.IntentMedicalAdvice:
		return responseMedical, convCtx

	case nlu.IntentOutOfScope:
		// Context continuation: a bare order number after a completed
		// tracking request reads as another tracking request.
		if result.Entities.OrderNumber != "" && convCtx.LastIntent == string(nlu.IntentTrackOrder) {
			return m.trackWithSuggestion(result.Entities.OrderNumber), convCtx
		}
		return responseOutOfScope, convCtx
	}

	return responseDefault, convCtx
}

// trackWithSuggestion looks up an order and, for orders still processing,
// appends the draft-email augmentation hint.
func (m *StateMachine) trackWithSuggestion(orderID string) string {
	response := m.backend.Track(orderID)
	if strings.Contains(strings.ToLower(response), "processing") {
		response += fmt.Sprintf(draftEmailSuggestionFmt, orderID)
	}
	return response
}

// productInfoWithSuggestion looks up a product and, for in-stock products,
// appends the outfit-suggestion augmentation hint.
func (m *StateMachine) productInfoWithSuggestion(productName string) string {
	response := m.backend.GetProductInfo(productName)
	if strings.Contains(strings.ToLower(response), "in stock") {
		response += fmt.Sprintf(outfitSuggestionFmt, productName)
	}
	return response
}
