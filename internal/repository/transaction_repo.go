package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"pagbridge/internal/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRepository handles gateway transaction records.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// FindAll returns transactions with pagination and search.
func (r *TransactionRepository) FindAll(limit, page int, query string) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	db := r.db.Model(&models.Transaction{})

	if query != "" {
		search := "%" + query + "%"
		db = db.Where("provider_id LIKE ? OR reference LIKE ? OR gateway LIKE ?",
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

	if err := db.Limit(limit).Offset(offset).Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// FindByProvider returns the transaction a gateway already reported, if any.
func (r *TransactionRepository) FindByProvider(gateway, providerID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.Where("gateway = ? AND provider_id = ?", gateway, providerID).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// Create creates a new transaction record.
func (r *TransactionRepository) Create(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

// UpdateStatus moves a transaction to a new status.
func (r *TransactionRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&models.Transaction{}).Where("id = ?", id).Update("status", status).Error
}

// FindStalePending returns pending transactions created before the cutoff.
func (r *TransactionRepository) FindStalePending(cutoff time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.Where("status = ? AND created_at < ?", "pending", cutoff).Find(&transactions).Error
	return transactions, err
}
