package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogService_Track(t *testing.T) {
	svc := NewService(nil)

	tests := []struct {
		name        string
		orderNumber string
		expected    string
	}{
		{
			name:        "out for delivery",
			orderNumber: "12345",
			expected:    "Your order 12345 is currently out for delivery and should arrive today.",
		},
		{
			name:        "delivered",
			orderNumber: "54321",
			expected:    "Your order 54321 was delivered on Tuesday.",
		},
		{
			name:        "shipped",
			orderNumber: "12346",
			expected:    "Your order 12346 has shipped and is expected Friday.",
		},
		{
			name:        "processing",
			orderNumber: "99999",
			expected:    "Your order 99999 is still processing.",
		},
		{
			name:        "unknown order",
			orderNumber: "00000",
			expected:    "I'm sorry, I could not find an order with that number.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.Track(tt.orderNumber))
		})
	}
}

func TestCatalogService_ReturnEligible(t *testing.T) {
	svc := NewService(nil)

	assert.Equal(t,
		"Your order 12345 is not eligible for return as it is still in transit.",
		svc.ReturnEligible("12345"))
	assert.Equal(t,
		"Your order 54321 is eligible for return. You can start the process here: [www.example.com/return/54321]",
		svc.ReturnEligible("54321"))
	assert.Equal(t,
		"I'm sorry, I could not find an order with that number.",
		svc.ReturnEligible("00000"))
}

func TestCatalogService_GetProductInfo(t *testing.T) {
	svc := NewService(nil)

	tests := []struct {
		name        string
		productName string
		expected    string
	}{
		{
			name:        "exact lowercase key",
			productName: "red shoes",
			expected:    "Yes, the 'Red Shoes' are in stock in sizes 8, 9, and 10.",
		},
		{
			name:        "mixed case lookup",
			productName: "Red Shoes",
			expected:    "Yes, the 'Red Shoes' are in stock in sizes 8, 9, and 10.",
		},
		{
			name:        "surrounding whitespace ignored",
			productName: "  Blue Shirt  ",
			expected:    "I'm sorry, the 'Blue Shirt' is currently out of stock.",
		},
		{
			name:        "unknown product echoes original casing",
			productName: "Green Hat",
			expected:    "I'm sorry, I don't have any information on a product called 'Green Hat'.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.GetProductInfo(tt.productName))
		})
	}
}
