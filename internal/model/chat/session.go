package chat

import "time"

// Session captures a transient anonymous conversation bound to one variant.
type Session struct {
	ID        string    `json:"id"`
	VariantID string    `json:"variantId"`
	CreatedAt time.Time `json:"createdAt"`
}
