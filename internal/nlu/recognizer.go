package nlu

// Result is the full output of recognition for one message.
type Result struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
}

// Recognize runs entity extraction followed by intent classification. It is
// a pure function: no I/O, no retained state, and the classifier may refine
// the extracted entities (the generative-action rules overwrite them).
func Recognize(text string) Result {
	ents := Extract(text)
	intent := Classify(text, &ents)
	return Result{Intent: intent, Entities: ents}
}
