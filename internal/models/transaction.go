package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction maps to the `transactions` table: one row per gateway
// notification outcome, keyed by our own uuid.
type Transaction struct {
	ID         string          `gorm:"column:id;primaryKey;size:36" json:"id"`
	Gateway    string          `gorm:"column:gateway;size:50;uniqueIndex:idx_gateway_provider" json:"gateway"`
	ProviderID string          `gorm:"column:provider_id;size:100;uniqueIndex:idx_gateway_provider" json:"provider_id"`
	InvoiceID  int64           `gorm:"column:invoice_id;index" json:"invoice_id"`
	Reference  string          `gorm:"column:reference;size:200" json:"reference"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(12,2)" json:"amount"`
	Currency   string          `gorm:"column:currency;size:3" json:"currency"`
	Status     string          `gorm:"column:status;size:20" json:"status"`
	Type       string          `gorm:"column:type;size:20" json:"type"`
	RawPayload string          `gorm:"column:raw_payload;type:text" json:"raw_payload"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
