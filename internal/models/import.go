package models

import "github.com/google/uuid"

// ImportStatus represents the outcome of an import run
type ImportStatus string

const (
	ImportStatusSuccess        ImportStatus = "success"
	ImportStatusPartialSuccess ImportStatus = "partial_success"
	ImportStatusError          ImportStatus = "error"
)

// ImportResult is the outcome of one shop's feed reconciliation
type ImportResult struct {
	ShopID   uuid.UUID    `json:"shopId"`
	ShopName string       `json:"shopName,omitempty"`
	Status   ImportStatus `json:"status"`
	Message  string       `json:"message"`

	// Reconciliation counters for the successful case
	Categories   int `json:"categories,omitempty"`
	Products     int `json:"products,omitempty"`
	ProductInfos int `json:"productInfos,omitempty"`
	Skipped      int `json:"skipped,omitempty"`
}

// BatchImportResult aggregates independent per-shop imports. One bad shop
// document never blocks the others.
type BatchImportResult struct {
	Status    ImportStatus   `json:"status"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Details   []ImportResult `json:"details"`
}

// ImportShopRequest is the payload for POST /import/shops/:id.
// FeedURL is optional; when empty the shop's persisted feed URL is used.
type ImportShopRequest struct {
	FeedURL string `json:"feedUrl"`
}
