package model

import "time"

// Transaction is a single spending entry.
type Transaction struct {
	ID          string     `json:"id"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Category    string     `json:"category"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Category is a fixed spending category with its display colour.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Budget is the spending limit for one category in one month.
// (Category, Month) is unique.
type Budget struct {
	ID        string     `json:"id"`
	Category  string     `json:"category"`
	Amount    float64    `json:"amount"`
	Month     string     `json:"month"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// BudgetComparison is a budget together with what has been spent against it.
type BudgetComparison struct {
	Budget
	Spent       float64 `json:"spent"`
	Remaining   float64 `json:"remaining"`
	PercentUsed int64   `json:"percentUsed"`
}

// Analytics is the aggregate returned by GET /api/analytics.
type Analytics struct {
	MonthlySpending   map[string]float64 `json:"monthlySpending"`
	CategorySpending  map[string]float64 `json:"categorySpending"`
	BudgetComparison  []BudgetComparison `json:"budgetComparison"`
	TotalTransactions int                `json:"totalTransactions"`
	TotalSpent        float64            `json:"totalSpent"`
}

// Categories is the predefined category list.
var Categories = []Category{
	{ID: "food", Name: "Food & Dining", Color: "#FF6B6B"},
	{ID: "transport", Name: "Transportation", Color: "#4ECDC4"},
	{ID: "entertainment", Name: "Entertainment", Color: "#45B7D1"},
	{ID: "shopping", Name: "Shopping", Color: "#96CEB4"},
	{ID: "utilities", Name: "Utilities", Color: "#FFEAA7"},
	{ID: "healthcare", Name: "Healthcare", Color: "#DDA0DD"},
	{ID: "education", Name: "Education", Color: "#98D8C8"},
	{ID: "savings", Name: "Savings", Color: "#A8E6CF"},
	{ID: "other", Name: "Other", Color: "#FFD93D"},
}

// JSON keys the runner requires in responses, and the keys of create
// requests it omits one by one to check rejection.
var (
	TransactionRequiredFields = []string{"amount", "description", "date", "category"}
	CategoryFields            = []string{"id", "name", "color"}
	BudgetRequiredFields      = []string{"category", "amount", "month"}
	AnalyticsFields           = []string{"monthlySpending", "categorySpending", "budgetComparison", "totalTransactions", "totalSpent"}
	BudgetComparisonFields    = []string{"spent", "remaining", "percentUsed"}
)

// Date layouts used on the wire.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)
