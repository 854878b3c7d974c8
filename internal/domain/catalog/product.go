// Package catalog owns the product catalog: the immutable Product records
// loaded at startup and the Index that resolves free-form phrases to them.
package catalog

// Product is a single sellable catalog row.  Products are immutable after
// catalog load and owned exclusively by the Index.
type Product struct {
	// Code is the unique SKU, e.g. "ABC-123".
	Code string `json:"code"`

	// Name is the display name used in order emails, e.g. "SuperWidget".
	Name string `json:"name"`

	// MinOrderQuantity is the smallest quantity that can be ordered.
	MinOrderQuantity int `json:"min_order_quantity"`

	// Price is the unit price.
	Price float64 `json:"price"`

	// Stock is the quantity currently available.
	Stock int `json:"stock"`

	// Category is optional grouping metadata.
	Category string `json:"category,omitempty"`
}
