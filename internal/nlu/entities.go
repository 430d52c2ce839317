// Package nlu implements the rule-based intent and entity recognizer.
package nlu

import (
	"regexp"
	"strings"
)

// Entities holds the structured values extracted from a message. A field is
// empty when the corresponding entity was not found; extraction never fails.
type Entities struct {
	OrderNumber string `json:"orderNumber,omitempty"`
	ProductName string `json:"productName,omitempty"`
}

var (
	// Order numbers are exactly 5 digits bounded by non-digit boundaries.
	orderNumberPattern = regexp.MustCompile(`\b(\d{5})\b`)

	// "about the X", "of the X", "for the X", optionally quoted.
	productPhrasePattern = regexp.MustCompile(`(?i)(?:about|of|for) the ['"]?([\w\s]+)['"]?`)

	// Fallback: first single- or double-quoted run of words.
	quotedProductPattern = regexp.MustCompile(`['"]([\w\s]+)['"]`)
)

// Extract pulls the order number and product name out of raw text. It is
// independent of intent classification and deterministic for a given input.
func Extract(text string) Entities {
	var ents Entities

	if m := orderNumberPattern.FindStringSubmatch(text); m != nil {
		ents.OrderNumber = m[1]
	}

	if m := productPhrasePattern.FindStringSubmatch(text); m != nil {
		ents.ProductName = strings.ToLower(strings.TrimSpace(m[1]))
	} else if m := quotedProductPattern.FindStringSubmatch(text); m != nil {
		ents.ProductName = strings.ToLower(strings.TrimSpace(m[1]))
	}

	return ents
}

// ScanOrderNumber returns the first 5-digit order number in text, or "".
// The dialogue manager uses it to resolve a pending slot from a raw reply.
func ScanOrderNumber(text string) string {
	if m := orderNumberPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
