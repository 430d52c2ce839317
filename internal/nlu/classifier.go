package nlu

import (
	"regexp"
	"strings"
)

// Intent is the single classified purpose of a user message.
type Intent string

const (
	IntentGreet               Intent = "greet"
	IntentFAQShipping         Intent = "faq_shipping"
	IntentTrackOrder          Intent = "track_order"
	IntentReturnItem          Intent = "return_item"
	IntentProductInquiry      Intent = "product_inquiry"
	IntentGeminiDraftEmail    Intent = "gemini_draft_email"
	IntentGeminiSuggestOutfit Intent = "gemini_suggest_outfit"
	IntentToxicity            Intent = "toxicity"
	IntentInjection           Intent = "injection"
	IntentMedicalAdvice       Intent = "medical_advice"
	IntentEmptyOrNonsensical  Intent = "empty_or_nonsensical"
	IntentOutOfScope          Intent = "out_of_scope"
)

var (
	draftEmailPattern    = regexp.MustCompile(`draft .* email about (\d{5})`)
	suggestOutfitPattern = regexp.MustCompile(`suggest .* outfit for [\w\s]`)
	// Locates the trigger phrase in the original-case text so the product
	// name keeps its casing.
	suggestOutfitTrigger = regexp.MustCompile(`(?i)suggest .* outfit for`)

	greetPattern           = regexp.MustCompile(`^(hi|hello|hey)\b`)
	trackKeywordsPattern   = regexp.MustCompile(`\b(track|trak|where is|status of|stuff shipped|package arrive)\b`)
	returnKeywordsPattern  = regexp.MustCompile(`\b(return|refund)\b`)
	productKeywordsPattern = regexp.MustCompile(`\b(stock|price|about the|features of|do you have)\b`)

	toxicityKeywords  = []string{"stupid", "terrible", "hate"}
	injectionKeywords = []string{"ignore all", "system password", "previous instructions"}
	medicalKeywords   = []string{"rash", "medical", "health"}
)

// classifierRule is one entry in the priority-ordered cascade. Rules are
// evaluated top to bottom and the first match wins; a rule may mutate the
// extracted entities (the generative-action rules overwrite them).
type classifierRule struct {
	name   string
	intent Intent
	match  func(raw, lower string, ents *Entities) bool
}

// rules is the full cascade in priority order: generative actions, safety
// filters, domain intents from most to least specific, FAQ, then fallbacks.
// Safety and generative-action rules sit above the keyword rules so an
// adversarial or augmentation-triggering phrase is never routed to an
// ordinary domain handler.
var rules = []classifierRule{
	{
		name:   "gemini draft email",
		intent: IntentGeminiDraftEmail,
		match: func(raw, lower string, ents *Entities) bool {
			m := draftEmailPattern.FindStringSubmatch(lower)
			if m == nil {
				return false
			}
			ents.OrderNumber = m[1]
			return true
		},
	},
	{
		name:   "gemini suggest outfit",
		intent: IntentGeminiSuggestOutfit,
		match: func(raw, lower string, ents *Entities) bool {
			if !suggestOutfitPattern.MatchString(lower) {
				return false
			}
			// Product name is everything after the trigger phrase, in the
			// original casing.
			if loc := suggestOutfitTrigger.FindStringIndex(raw); loc != nil {
				ents.ProductName = strings.TrimSpace(raw[loc[1]:])
			}
			return true
		},
	},
	{
		name:   "toxicity filter",
		intent: IntentToxicity,
		match: func(raw, lower string, ents *Entities) bool {
			return containsAny(lower, toxicityKeywords)
		},
	},
	{
		name:   "injection filter",
		intent: IntentInjection,
		match: func(raw, lower string, ents *Entities) bool {
			return containsAny(lower, injectionKeywords)
		},
	},
	{
		name:   "medical filter",
		intent: IntentMedicalAdvice,
		match: func(raw, lower string, ents *Entities) bool {
			return containsAny(lower, medicalKeywords)
		},
	},
	{
		name:   "greeting",
		intent: IntentGreet,
		match: func(raw, lower string, ents *Entities) bool {
			return greetPattern.MatchString(lower)
		},
	},
	{
		name:   "track order",
		intent: IntentTrackOrder,
		match: func(raw, lower string, ents *Entities) bool {
			return trackKeywordsPattern.MatchString(lower)
		},
	},
	{
		name:   "return item",
		intent: IntentReturnItem,
		match: func(raw, lower string, ents *Entities) bool {
			return returnKeywordsPattern.MatchString(lower)
		},
	},
	{
		name:   "product inquiry",
		intent: IntentProductInquiry,
		match: func(raw, lower string, ents *Entities) bool {
			if productKeywordsPattern.MatchString(lower) {
				return true
			}
			// A bare product name with no order number reads as an inquiry.
			return ents.ProductName != "" && ents.OrderNumber == ""
		},
	},
	{
		name:   "faq shipping",
		intent: IntentFAQShipping,
		match: func(raw, lower string, ents *Entities) bool {
			return strings.Contains(lower, "shipping policy")
		},
	},
	{
		name:   "empty or nonsensical",
		intent: IntentEmptyOrNonsensical,
		match: func(raw, lower string, ents *Entities) bool {
			return strings.TrimSpace(raw) == "" || strings.HasPrefix(lower, "asdfjkl")
		},
	},
}

// Classify applies the rule cascade to a message and its extracted entities
// and returns exactly one intent. Deterministic: same input, same output.
func Classify(text string, ents *Entities) Intent {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.match(text, lower, ents) {
			return r.intent
		}
	}
	return IntentOutOfScope
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
