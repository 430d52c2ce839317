package models

// PendingAction identifies the slot-filling task currently awaiting a value.
// The zero value means no action is pending.
type PendingAction string

const (
	PendingNone        PendingAction = ""
	PendingTrackOrder  PendingAction = "get_order_track"
	PendingReturnOrder PendingAction = "get_order_return"
	PendingProductInfo PendingAction = "get_product_info"
)

// ConversationContext carries the per-conversation dialogue state between
// turns. It is owned by the transport layer and mutated only by the dialogue
// state machine during a turn. At most one PendingAction is set at a time;
// GeminiPrompt is consumed and cleared by the transport layer before the
// next turn.
type ConversationContext struct {
	PendingAction PendingAction `json:"pendingAction,omitempty"`
	LastIntent    string        `json:"lastIntent,omitempty"`
	GeminiPrompt  string        `json:"geminiPrompt,omitempty"`
}

// HasPending reports whether a slot-filling task is awaiting a value.
func (c ConversationContext) HasPending() bool {
	return c.PendingAction != PendingNone
}

// TakePrompt removes and returns the queued generative prompt, if any.
func (c *ConversationContext) TakePrompt() string {
	prompt := c.GeminiPrompt
	c.GeminiPrompt = ""
	return prompt
}
