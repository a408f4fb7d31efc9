package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/leca/finance-conformance/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTransaction(id, date string, amount float64) *model.Transaction {
	return &model.Transaction{
		ID:          id,
		Amount:      amount,
		Description: "coffee " + id,
		Date:        date,
		Category:    "food",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestCreateAndGetTransaction(t *testing.T) {
	db := newTestDB(t)

	tx := newTransaction("tx-001", "2024-06-01", 75.25)
	require.NoError(t, db.CreateTransaction(tx))

	got, err := db.GetTransaction("tx-001")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, 75.25, got.Amount)
	assert.Equal(t, tx.Description, got.Description)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, "food", got.Category)
	assert.Equal(t, tx.CreatedAt, got.CreatedAt.UTC())
	assert.Nil(t, got.UpdatedAt)

	// not found
	_, err = db.GetTransaction("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTransactionDuplicateID(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.CreateTransaction(newTransaction("dup", "2024-06-01", 1)))
	assert.Error(t, db.CreateTransaction(newTransaction("dup", "2024-06-02", 2)))
}

func TestListTransactionsNewestFirst(t *testing.T) {
	db := newTestDB(t)

	txs, err := db.ListTransactions()
	require.NoError(t, err)
	assert.Empty(t, txs)

	require.NoError(t, db.CreateTransaction(newTransaction("a", "2024-01-15", 10)))
	require.NoError(t, db.CreateTransaction(newTransaction("b", "2024-03-01", 20)))
	require.NoError(t, db.CreateTransaction(newTransaction("c", "2024-02-10", 30)))

	txs, err = db.ListTransactions()
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "b", txs[0].ID)
	assert.Equal(t, "c", txs[1].ID)
	assert.Equal(t, "a", txs[2].ID)
}

func TestUpdateTransaction(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.CreateTransaction(newTransaction("tx-upd", "2024-06-01", 75.25)))

	updated := &model.Transaction{
		ID:          "tx-upd",
		Amount:      85.50,
		Description: "Updated test transaction",
		Date:        "2024-06-02",
		Category:    "shopping",
	}
	require.NoError(t, db.UpdateTransaction(updated))

	got, err := db.GetTransaction("tx-upd")
	require.NoError(t, err)
	assert.Equal(t, 85.5, got.Amount)
	assert.Equal(t, "Updated test transaction", got.Description)
	assert.Equal(t, "2024-06-02", got.Date)
	assert.Equal(t, "shopping", got.Category)
	assert.NotNil(t, got.UpdatedAt)

	// unknown id
	updated.ID = "missing"
	assert.ErrorIs(t, db.UpdateTransaction(updated), ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.CreateTransaction(newTransaction("tx-del", "2024-06-01", 5)))

	require.NoError(t, db.DeleteTransaction("tx-del"))

	_, err := db.GetTransaction("tx-del")
	assert.ErrorIs(t, err, ErrNotFound)

	// second delete
	assert.ErrorIs(t, db.DeleteTransaction("tx-del"), ErrNotFound)
}

func TestUpsertBudget(t *testing.T) {
	db := newTestDB(t)

	b := &model.Budget{
		ID:        "budget-1",
		Category:  "entertainment",
		Amount:    150,
		Month:     "2024-06",
		CreatedAt: time.Now().UTC(),
	}
	created, err := db.UpsertBudget(b)
	require.NoError(t, err)
	assert.True(t, created)

	again := &model.Budget{
		ID:        "budget-2",
		Category:  "entertainment",
		Amount:    200,
		Month:     "2024-06",
		CreatedAt: time.Now().UTC(),
	}
	created, err = db.UpsertBudget(again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "budget-1", again.ID, "upsert reports the id of the existing budget")

	// another month is a new budget
	other := &model.Budget{ID: "budget-3", Category: "entertainment", Amount: 90, Month: "2024-07", CreatedAt: time.Now().UTC()}
	created, err = db.UpsertBudget(other)
	require.NoError(t, err)
	assert.True(t, created)

	budgets, err := db.ListBudgets()
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, "budget-1", budgets[0].ID)
	assert.Equal(t, 200.0, budgets[0].Amount)
	assert.NotNil(t, budgets[0].UpdatedAt)
	assert.Equal(t, "2024-07", budgets[1].Month)
	assert.Nil(t, budgets[1].UpdatedAt)
}

func TestAmountsRoundTripExactly(t *testing.T) {
	db := newTestDB(t)

	for _, amount := range []float64{0.1, 0.2, 19.99, 1234567.89} {
		tx := newTransaction("tx", "2024-06-01", amount)
		require.NoError(t, db.CreateTransaction(tx))
		got, err := db.GetTransaction("tx")
		require.NoError(t, err)
		assert.Equal(t, amount, got.Amount)
		require.NoError(t, db.DeleteTransaction("tx"))
	}
}

func TestFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twin.db")

	db, err := NewSQLiteDB(path)
	require.NoError(t, err)
	require.NoError(t, db.CreateTransaction(newTransaction("persist", "2024-06-01", 42)))
	require.NoError(t, db.Close())

	db, err = NewSQLiteDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	got, err := db.GetTransaction("persist")
	require.NoError(t, err)
	assert.Equal(t, 42.0, got.Amount)
}
