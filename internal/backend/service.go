// Package backend provides the read-only e-commerce lookups the dialogue
// manager depends on: order status, return eligibility, and product info.
package backend

import (
	"fmt"
	"strings"
)

// Service is the backend lookup contract. Every method is total: unknown
// keys yield a human-readable "not found" sentence, never an error.
type Service interface {
	Track(orderNumber string) string
	ReturnEligible(orderNumber string) string
	GetProductInfo(productName string) string
}

const orderNotFound = "I'm sorry, I could not find an order with that number."

// CatalogService answers lookups from an in-memory catalog. Reads are pure
// and safe under arbitrary concurrency.
type CatalogService struct {
	catalog *Catalog
}

// NewService creates a backend service over the given catalog; a nil
// catalog falls back to the built-in default data.
func NewService(catalog *Catalog) *CatalogService {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &CatalogService{catalog: catalog}
}

// Track returns the status sentence for an order.
func (s *CatalogService) Track(orderNumber string) string {
	if status, ok := s.catalog.Orders[orderNumber]; ok {
		return status
	}
	return orderNotFound
}

// ReturnEligible returns the return-eligibility sentence for an order.
func (s *CatalogService) ReturnEligible(orderNumber string) string {
	if eligibility, ok := s.catalog.Returns[orderNumber]; ok {
		return eligibility
	}
	return orderNotFound
}

// GetProductInfo returns the info sentence for a product. The lookup is
// case- and whitespace-insensitive.
func (s *CatalogService) GetProductInfo(productName string) string {
	key := strings.ToLower(strings.TrimSpace(productName))
	if info, ok := s.catalog.Products[key]; ok {
		return info
	}
	return fmt.Sprintf("I'm sorry, I don't have any information on a product called '%s'.", productName)
}
