package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses as the host billing system tracks them.
const (
	InvoiceStatusUnpaid    = "unpaid"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice maps to the `invoices` table.
type Invoice struct {
	ID       int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Number   string          `gorm:"column:number;size:50;uniqueIndex" json:"number"`
	Seller   string          `gorm:"column:seller;size:200" json:"seller"`
	Currency string          `gorm:"column:currency;size:3" json:"currency"`
	Total    decimal.Decimal `gorm:"column:total;type:decimal(12,2)" json:"total"`
	Status   string          `gorm:"column:status;size:20" json:"status"`

	BuyerFirstName string `gorm:"column:buyer_first_name;size:100" json:"buyer_first_name"`
	BuyerLastName  string `gorm:"column:buyer_last_name;size:100" json:"buyer_last_name"`
	BuyerEmail     string `gorm:"column:buyer_email;size:200" json:"buyer_email"`
	BuyerAddress   string `gorm:"column:buyer_address;size:300" json:"buyer_address"`
	BuyerCity      string `gorm:"column:buyer_city;size:100" json:"buyer_city"`
	BuyerState     string `gorm:"column:buyer_state;size:50" json:"buyer_state"`
	BuyerZip       string `gorm:"column:buyer_zip;size:20" json:"buyer_zip"`
	BuyerPhone     string `gorm:"column:buyer_phone;size:50" json:"buyer_phone"`

	Lines []LineItem `gorm:"foreignKey:InvoiceID" json:"lines"`

	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	PaidAt    *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// LineItem maps to the `invoice_lines` table.
type LineItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InvoiceID int64           `gorm:"column:invoice_id;index" json:"invoice_id"`
	Title     string          `gorm:"column:title;size:300" json:"title"`
	Quantity  int             `gorm:"column:quantity" json:"quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(12,2)" json:"price"`
}

func (LineItem) TableName() string {
	return "invoice_lines"
}
