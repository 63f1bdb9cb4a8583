package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single credit-card transaction from the input file.
type Transaction struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	City     string          `json:"city"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// GenerateID assigns a new UUID to the transaction if it has none.
func (t *Transaction) GenerateID() {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
}

// Month returns the transaction date truncated to the start of its
// calendar month, in UTC.
func (t *Transaction) Month() time.Time {
	return time.Date(t.Date.Year(), t.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// TransactionFilter selects transactions by exact city and expense
// category match. Matching is case-sensitive.
type TransactionFilter struct {
	City     string
	Category string
}

// Matches reports whether the transaction satisfies the filter.
func (f TransactionFilter) Matches(t *Transaction) bool {
	return t.City == f.City && t.Category == f.Category
}
