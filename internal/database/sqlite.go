package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leca/finance-conformance/internal/model"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Database backed by SQLite.
// Amounts are stored as decimal strings so sums stay exact.
type SQLiteDB struct {
	db *sql.DB
}

// Compile-time check that SQLiteDB implements Database.
var _ Database = (*SQLiteDB)(nil)

// NewSQLiteDB opens (or creates) an SQLite database at dsn and runs migrations.
// For in-memory use pass ":memory:".
func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	memory := strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
	if !memory {
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		} else if !strings.Contains(dsn, "journal_mode") {
			dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Each connection to a private in-memory database sees its own empty
	// database, so keep exactly one.
	if memory {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

func (s *SQLiteDB) ListTransactions() ([]*model.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, amount, description, date, category, created_at, updated_at
		FROM transactions
		ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *SQLiteDB) GetTransaction(id string) (*model.Transaction, error) {
	row := s.db.QueryRow(`
		SELECT id, amount, description, date, category, created_at, updated_at
		FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

func (s *SQLiteDB) CreateTransaction(tx *model.Transaction) error {
	_, err := s.db.Exec(`
		INSERT INTO transactions (id, amount, description, date, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, formatAmount(tx.Amount), tx.Description, tx.Date, tx.Category,
		tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDB) UpdateTransaction(tx *model.Transaction) error {
	updated := time.Now().UTC()
	if tx.UpdatedAt != nil {
		updated = tx.UpdatedAt.UTC()
	}
	res, err := s.db.Exec(`
		UPDATE transactions SET amount = ?, description = ?, date = ?, category = ?, updated_at = ?
		WHERE id = ?`,
		formatAmount(tx.Amount), tx.Description, tx.Date, tx.Category,
		updated.Format(time.RFC3339Nano), tx.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return checkRowsAffected(res, "transaction")
}

func (s *SQLiteDB) DeleteTransaction(id string) error {
	res, err := s.db.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return checkRowsAffected(res, "transaction")
}

// ---------------------------------------------------------------------------
// Budgets
// ---------------------------------------------------------------------------

func (s *SQLiteDB) ListBudgets() ([]*model.Budget, error) {
	rows, err := s.db.Query(`
		SELECT id, category, amount, month, created_at, updated_at
		FROM budgets
		ORDER BY month ASC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *SQLiteDB) UpsertBudget(b *model.Budget) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin upsert budget: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRow(`SELECT id FROM budgets WHERE category = ? AND month = ?`, b.Category, b.Month).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.Exec(`
			INSERT INTO budgets (id, category, amount, month, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.Category, formatAmount(b.Amount), b.Month,
			b.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return false, fmt.Errorf("insert budget: %w", err)
		}
		return true, tx.Commit()
	case err != nil:
		return false, fmt.Errorf("find budget: %w", err)
	}

	_, err = tx.Exec(`UPDATE budgets SET amount = ?, updated_at = ? WHERE id = ?`,
		formatAmount(b.Amount), time.Now().UTC().Format(time.RFC3339Nano), existingID)
	if err != nil {
		return false, fmt.Errorf("update budget: %w", err)
	}
	b.ID = existingID
	return false, tx.Commit()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scannable) (*model.Transaction, error) {
	tx := &model.Transaction{}
	var amount, createdStr string
	var updatedStr sql.NullString

	err := row.Scan(&tx.ID, &amount, &tx.Description, &tx.Date, &tx.Category, &createdStr, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	if tx.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	tx.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	tx.UpdatedAt = parseNullTime(updatedStr)
	return tx, nil
}

func scanBudget(row scannable) (*model.Budget, error) {
	b := &model.Budget{}
	var amount, createdStr string
	var updatedStr sql.NullString

	if err := row.Scan(&b.ID, &b.Category, &amount, &b.Month, &createdStr, &updatedStr); err != nil {
		return nil, fmt.Errorf("scan budget: %w", err)
	}

	var err error
	if b.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	b.UpdatedAt = parseNullTime(updatedStr)
	return b, nil
}

func formatAmount(f float64) string {
	return decimal.NewFromFloat(f).String()
}

func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse stored amount %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func checkRowsAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
