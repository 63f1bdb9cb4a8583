package repository

import (
	"context"

	"github.com/ivanoskov/expense_forecast/internal/model"
)

// Repository loads transactions from a data source.
type Repository interface {
	// GetTransactions returns all transactions matching the filter. A
	// zero-value filter returns every transaction in the source.
	GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
}
