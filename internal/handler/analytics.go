package handler

import (
	"log"
	"math"
	"net/http"

	"github.com/leca/finance-conformance/internal/api"
	"github.com/leca/finance-conformance/internal/model"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

const analyticsCacheKey = "analytics"

// GetAnalytics handles GET /api/analytics.
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	if h.Cache != nil {
		if cached, found := h.Cache.Get(analyticsCacheKey); found {
			api.WriteJSON(w, http.StatusOK, cached)
			return
		}
	}

	txs, err := h.DB.ListTransactions()
	if err != nil {
		log.Printf("GetAnalytics: %v", err)
		api.InternalError(w, "Failed to fetch analytics")
		return
	}
	budgets, err := h.DB.ListBudgets()
	if err != nil {
		log.Printf("GetAnalytics: %v", err)
		api.InternalError(w, "Failed to fetch analytics")
		return
	}

	analytics := summarize(txs, budgets)
	if h.Cache != nil {
		h.Cache.Set(analyticsCacheKey, analytics, cache.DefaultExpiration)
	}
	api.WriteJSON(w, http.StatusOK, analytics)
}

// summarize aggregates spending per month and per category over all
// transactions and compares each budget with its category total.
func summarize(txs []*model.Transaction, budgets []*model.Budget) model.Analytics {
	monthly := map[string]decimal.Decimal{}
	byCategory := map[string]decimal.Decimal{}
	total := decimal.Zero

	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		month := tx.Date
		if len(month) > len(model.MonthLayout) {
			month = month[:len(model.MonthLayout)]
		}
		monthly[month] = monthly[month].Add(amount)
		byCategory[tx.Category] = byCategory[tx.Category].Add(amount)
		total = total.Add(amount)
	}

	comparison := make([]model.BudgetComparison, 0, len(budgets))
	for _, b := range budgets {
		limit := decimal.NewFromFloat(b.Amount)
		spent := byCategory[b.Category]
		c := model.BudgetComparison{
			Budget:    *b,
			Spent:     spent.InexactFloat64(),
			Remaining: limit.Sub(spent).InexactFloat64(),
		}
		if !limit.IsZero() {
			pct := spent.Div(limit).Mul(hundred).InexactFloat64()
			c.PercentUsed = int64(math.Floor(pct + 0.5))
		}
		comparison = append(comparison, c)
	}

	return model.Analytics{
		MonthlySpending:   floats(monthly),
		CategorySpending:  floats(byCategory),
		BudgetComparison:  comparison,
		TotalTransactions: len(txs),
		TotalSpent:        total.InexactFloat64(),
	}
}

func floats(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v.InexactFloat64()
	}
	return out
}
