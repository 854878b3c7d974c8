// Package order holds the wire-level request and response shapes of the
// intake API. The response side reuses the domain types' JSON encoding so
// stored and served orders never drift apart.
package order

import "time"

// ProcessEmailRequest is the JSON body of POST /api/v1/intake/email.
type ProcessEmailRequest struct {
	RawContent string     `json:"raw_content" binding:"required"`
	Sender     string     `json:"sender"`
	Subject    string     `json:"subject"`
	ReceivedAt *time.Time `json:"received_at"`
}

// MergeOrdersRequest is the JSON body of POST /api/v1/orders/merge.
type MergeOrdersRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required,min=1"`
}

// ErrorResponse is the uniform error body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
