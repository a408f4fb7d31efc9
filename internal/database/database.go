package database

import (
	"errors"

	"github.com/leca/finance-conformance/internal/model"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// Database defines the persistence interface of the twin backend.
type Database interface {
	// Transactions
	ListTransactions() ([]*model.Transaction, error)
	GetTransaction(id string) (*model.Transaction, error)
	CreateTransaction(tx *model.Transaction) error
	UpdateTransaction(tx *model.Transaction) error
	DeleteTransaction(id string) error

	// Budgets
	ListBudgets() ([]*model.Budget, error)
	// UpsertBudget inserts b, or updates the amount of the budget that
	// already exists for b.Category and b.Month. created reports which.
	UpsertBudget(b *model.Budget) (created bool, err error)

	Close() error
}
