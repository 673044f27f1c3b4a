package repository

import (
	"time"

	"gorm.io/gorm"

	"pagbridge/internal/models"
)

// InvoiceRepository handles invoice database operations.
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindAll returns invoices with pagination and search.
func (r *InvoiceRepository) FindAll(limit, page int, query string) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	var total int64

	db := r.db.Model(&models.Invoice{})

	if query != "" {
		search := "%" + query + "%"
		db = db.Where("number LIKE ? OR buyer_email LIKE ? OR seller LIKE ?",
			search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Preload("Lines").Limit(limit).Offset(offset).Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// FindByID returns an invoice with its lines.
func (r *InvoiceRepository) FindByID(id int64) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.Preload("Lines").First(&invoice, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Create creates a new invoice with its lines.
func (r *InvoiceRepository) Create(invoice *models.Invoice) error {
	return r.db.Create(invoice).Error
}

// MarkPaid records a completed payment against the invoice.
func (r *InvoiceRepository) MarkPaid(id int64, paidAt time.Time) error {
	return r.db.Model(&models.Invoice{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":  models.InvoiceStatusPaid,
		"paid_at": paidAt,
	}).Error
}

// Update updates invoice fields.
func (r *InvoiceRepository) Update(id int64, updates map[string]interface{}) error {
	return r.db.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error
}
