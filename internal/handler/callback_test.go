package handler

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pagbridge/internal/gateway"
	"pagbridge/internal/repository"
)

func newCallbackHandlerWithMock(t *testing.T) (*CallbackHandler, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	h := NewCallbackHandler(
		repository.NewInvoiceRepository(db),
		repository.NewTransactionRepository(db),
		gateway.Registry{},
		zap.NewNop(),
	)
	return h, mock
}

func expectInvoiceLookup(mock sqlmock.Sqlmock, total string) {
	mock.ExpectQuery("SELECT (.+) FROM `invoices`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "currency", "total", "status"}).
			AddRow(42, "INV-42", "BRL", total, "unpaid"))
	mock.ExpectQuery("SELECT (.+) FROM `invoice_lines`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id"}))
}

func completedTxn(amount string) *gateway.Transaction {
	return &gateway.Transaction{
		InvoiceID:  42,
		ProviderID: "ABC",
		Reference:  "42$777",
		Amount:     decimal.RequireFromString(amount),
		Currency:   "BRL",
		Status:     gateway.StatusComplete,
		Type:       gateway.TypePayment,
	}
}

func TestRecordCompleteMarksInvoicePaid(t *testing.T) {
	h, mock := newCallbackHandlerWithMock(t)

	expectInvoiceLookup(mock, "99.90")
	mock.ExpectQuery("SELECT (.+) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `invoices`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, h.record("moip", completedTxn("99.90"), "status_pagamento=4"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPendingDoesNotMarkPaid(t *testing.T) {
	h, mock := newCallbackHandlerWithMock(t)

	expectInvoiceLookup(mock, "99.90")
	mock.ExpectQuery("SELECT (.+) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	// No invoice update may follow.

	txn := completedTxn("99.90")
	txn.Status = gateway.StatusPending

	require.NoError(t, h.record("moip", txn, "status_pagamento=3"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordProgressionUpdatesAndMarksPaid(t *testing.T) {
	h, mock := newCallbackHandlerWithMock(t)

	expectInvoiceLookup(mock, "99.90")
	mock.ExpectQuery("SELECT (.+) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "gateway", "provider_id", "invoice_id", "status"}).
			AddRow("txn-1", "moip", "ABC", 42, "pending"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `invoices`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, h.record("moip", completedTxn("99.90"), "status_pagamento=4"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSkipsAlreadyCompleteTransaction(t *testing.T) {
	h, mock := newCallbackHandlerWithMock(t)

	expectInvoiceLookup(mock, "99.90")
	mock.ExpectQuery("SELECT (.+) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "gateway", "provider_id", "invoice_id", "status"}).
			AddRow("txn-1", "moip", "ABC", 42, "complete"))
	// A redelivered settled notification touches nothing.

	require.NoError(t, h.record("moip", completedTxn("99.90"), "status_pagamento=4"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPartialPaymentDoesNotSettleInvoice(t *testing.T) {
	h, mock := newCallbackHandlerWithMock(t)

	expectInvoiceLookup(mock, "99.90")
	mock.ExpectQuery("SELECT (.+) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	// The short payment is recorded but the invoice stays unpaid.

	require.NoError(t, h.record("moip", completedTxn("50.00"), "status_pagamento=4"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
