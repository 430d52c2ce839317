package backend

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "ecommerce-chatbot/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// Catalog holds the read-only lookup tables backing order tracking, return
// eligibility, and product info. Values are the full human-readable
// sentences returned to the user.
type Catalog struct {
	Orders   map[string]string `json:"orders"`
	Returns  map[string]string `json:"returns"`
	Products map[string]string `json:"products"`
}

const catalogSchema = `{
	"type": "object",
	"required": ["orders", "returns", "products"],
	"additionalProperties": false,
	"properties": {
		"orders": {
			"type": "object",
			"patternProperties": {
				"^\\d{5}$": {"type": "string", "minLength": 1}
			},
			"additionalProperties": false
		},
		"returns": {
			"type": "object",
			"patternProperties": {
				"^\\d{5}$": {"type": "string", "minLength": 1}
			},
			"additionalProperties": false
		},
		"products": {
			"type": "object",
			"patternProperties": {
				"^.+$": {"type": "string", "minLength": 1}
			}
		}
	}
}`

// LoadCatalog reads and validates a catalog override file. Product keys are
// normalized to lowercase so lookups stay case-insensitive.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, apperrors.NewCatalogInvalidError(err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, apperrors.NewCatalogInvalidError(strings.Join(details, "; "))
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, apperrors.NewCatalogInvalidError(err.Error())
	}

	normalized := make(map[string]string, len(catalog.Products))
	for name, info := range catalog.Products {
		normalized[strings.ToLower(strings.TrimSpace(name))] = info
	}
	catalog.Products = normalized

	return &catalog, nil
}

// DefaultCatalog returns the built-in demo catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Orders: map[string]string{
			"12345": "Your order 12345 is currently out for delivery and should arrive today.",
			"54321": "Your order 54321 was delivered on Tuesday.",
			"12346": "Your order 12346 has shipped and is expected Friday.",
			"99999": "Your order 99999 is still processing.",
		},
		Returns: map[string]string{
			"12345": "Your order 12345 is not eligible for return as it is still in transit.",
			"54321": "Your order 54321 is eligible for return. You can start the process here: [www.example.com/return/54321]",
			"12346": "Your order 12346 is eligible for return. You can start the process here: [www.example.com/return/12346]",
		},
		Products: map[string]string{
			"red shoes":  "Yes, the 'Red Shoes' are in stock in sizes 8, 9, and 10.",
			"blue shirt": "I'm sorry, the 'Blue Shirt' is currently out of stock.",
			"skyhook":    "I'm sorry, I don't see a product called 'Skyhook' in our catalog.",
		},
	}
}
