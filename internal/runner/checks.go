package runner

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/leca/finance-conformance/internal/client"
	"github.com/leca/finance-conformance/internal/expect"
	"github.com/leca/finance-conformance/internal/model"
)

// send issues a request and checks its status in one go.
func (r *Runner) send(ctx context.Context, method, endpoint string, body any, want ...int) (*client.Response, error) {
	resp, err := r.client.Send(ctx, client.Request{Method: method, Endpoint: endpoint, Body: body})
	if err != nil {
		return nil, err
	}
	if err := expect.Status(resp.StatusCode, want...); err != nil {
		return resp, err
	}
	return resp, nil
}

// list fetches endpoint and returns the body as an array.
func (r *Runner) list(ctx context.Context, endpoint string) ([]any, error) {
	resp, err := r.send(ctx, http.MethodGet, endpoint, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return resp.Array()
}

// omit returns a copy of payload without the named keys.
func omit(payload map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// missingFieldCases lists the payload variants that must be rejected: the
// given combined omission followed by every single required field omitted.
func missingFieldCases(required []string, combined ...string) [][]string {
	cases := [][]string{combined}
	for _, f := range required {
		cases = append(cases, []string{f})
	}
	return cases
}

// rejectMissing posts every variant of valid lacking the fields of one case
// and expects 400 each time. adjust, when non-nil, may edit each variant
// before it is sent.
func (r *Runner) rejectMissing(ctx context.Context, endpoint string, valid map[string]any, cases [][]string,
	adjust func(payload map[string]any, omitted []string)) error {
	for _, fields := range cases {
		payload := omit(valid, fields...)
		if adjust != nil {
			adjust(payload, fields)
		}
		_, err := r.send(ctx, http.MethodPost, endpoint, payload, http.StatusBadRequest)
		if err != nil {
			return fmt.Errorf("payload without %s: %w", strings.Join(fields, ", "), err)
		}
	}
	return nil
}

// CheckTransactions verifies list, create, validation, update and delete of
// transactions.
func (r *Runner) CheckTransactions(ctx context.Context) GroupResult {
	g := r.newGroup(GroupTransactions)

	today := r.now().Format(model.DateLayout)
	marker := "conformance-invalid-" + r.newID()
	unknownID := r.newID()

	var createdID string
	deleted := false
	g.onCleanup(func(ctx context.Context) {
		if createdID == "" || deleted {
			return
		}
		resp, err := r.client.Send(ctx, client.Request{Method: http.MethodDelete, Endpoint: "transactions/" + createdID})
		switch {
		case err != nil:
			r.logger.Warn("cleanup of created transaction failed", "id", createdID, "error", err)
		case resp.StatusCode != http.StatusOK:
			r.logger.Warn("cleanup of created transaction failed", "id", createdID, "status", resp.StatusCode)
		}
	})

	return g.run(ctx,
		step{"get all transactions", func(ctx context.Context) error {
			txs, err := r.list(ctx, "transactions")
			if err != nil {
				return err
			}
			r.logger.Info("found transactions", "count", len(txs))
			return nil
		}},
		step{"create transaction with valid data", func(ctx context.Context) error {
			resp, err := r.send(ctx, http.MethodPost, "transactions", map[string]any{
				"amount":      75.25,
				"description": "Test transaction",
				"date":        today,
				"category":    "entertainment",
			}, http.StatusCreated)
			if err != nil {
				return err
			}
			obj, err := resp.Object()
			if err != nil {
				return err
			}
			id, err := resourceID(obj)
			if err != nil {
				return err
			}
			createdID = id
			r.logger.Info("created transaction", "id", createdID)
			return nil
		}},
		step{"create transaction with missing fields", func(ctx context.Context) error {
			valid := map[string]any{
				"amount":      50.0,
				"description": marker,
				"date":        today,
				"category":    "other",
			}
			// Without a description the marker moves to the category so a
			// wrongly stored record can still be found.
			return r.rejectMissing(ctx, "transactions", valid,
				missingFieldCases(model.TransactionRequiredFields, "date", "category"),
				func(payload map[string]any, omitted []string) {
					if slices.Contains(omitted, "description") {
						payload["category"] = marker
					}
				})
		}},
		step{"verify rejected transactions were not stored", func(ctx context.Context) error {
			txs, err := r.list(ctx, "transactions")
			if err != nil {
				return err
			}
			found := false
			for _, el := range txs {
				tx, ok := el.(map[string]any)
				if !ok {
					return expect.Failf("transaction list contains %T, want objects", el)
				}
				if tx["description"] == marker || tx["category"] == marker {
					return expect.Failf("rejected transaction was stored with id %v", tx["id"])
				}
				if id, err := resourceID(tx); err == nil && id == createdID {
					found = true
				}
			}
			if !found {
				return expect.Failf("created transaction %s is missing from the list", createdID)
			}
			return nil
		}},
		step{"update transaction with valid data", func(ctx context.Context) error {
			_, err := r.send(ctx, http.MethodPut, "transactions/"+createdID, updatedTransaction(today), http.StatusOK)
			return err
		}},
		step{"update transaction with invalid id", func(ctx context.Context) error {
			_, err := r.send(ctx, http.MethodPut, "transactions/"+unknownID, updatedTransaction(today), http.StatusNotFound)
			return err
		}},
		step{"delete transaction", func(ctx context.Context) error {
			if _, err := r.send(ctx, http.MethodDelete, "transactions/"+createdID, nil, http.StatusOK); err != nil {
				return err
			}
			deleted = true
			return nil
		}},
		step{"delete transaction again", func(ctx context.Context) error {
			_, err := r.send(ctx, http.MethodDelete, "transactions/"+createdID, nil, http.StatusNotFound)
			return err
		}},
		step{"delete transaction with invalid id", func(ctx context.Context) error {
			_, err := r.send(ctx, http.MethodDelete, "transactions/"+unknownID, nil, http.StatusNotFound)
			return err
		}},
	)
}

// resourceID returns the id of a created resource. Backends may issue string
// or numeric ids; either is formatted for use in a URL.
func resourceID(obj map[string]any) (string, error) {
	raw, ok := obj["id"]
	if !ok {
		return "", expect.Failf("missing field %q", "id")
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", expect.Failf("created resource has an empty id")
		}
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", expect.Failf("field %q: expected string or number, got %v", "id", raw)
	}
}

func updatedTransaction(date string) map[string]any {
	return map[string]any{
		"amount":      85.50,
		"description": "Updated test transaction",
		"date":        date,
		"category":    "shopping",
	}
}

// CheckCategories verifies the category list is non-empty and well formed.
func (r *Runner) CheckCategories(ctx context.Context) GroupResult {
	g := r.newGroup(GroupCategories)
	return g.run(ctx,
		step{"get all categories", func(ctx context.Context) error {
			categories, err := r.list(ctx, "categories")
			if err != nil {
				return err
			}
			if err := expect.NonEmpty(categories, "categories list"); err != nil {
				return err
			}
			if err := expect.EachObject(categories, "categories", model.CategoryFields...); err != nil {
				return err
			}
			r.logger.Info("found categories", "count", len(categories))
			return nil
		}},
	)
}

// CheckBudgets verifies list, create, validation and the upsert path of budgets.
func (r *Runner) CheckBudgets(ctx context.Context) GroupResult {
	g := r.newGroup(GroupBudgets)
	month := r.now().Format(model.MonthLayout)

	const (
		category      = "entertainment"
		createdAmount = 150.00
		updatedAmount = 200.00
	)

	return g.run(ctx,
		step{"get all budgets", func(ctx context.Context) error {
			budgets, err := r.list(ctx, "budgets")
			if err != nil {
				return err
			}
			r.logger.Info("found budgets", "count", len(budgets))
			return nil
		}},
		step{"create budget with valid data", func(ctx context.Context) error {
			_, err := r.send(ctx, http.MethodPost, "budgets", map[string]any{
				"category": category,
				"amount":   createdAmount,
				"month":    month,
			}, http.StatusOK, http.StatusCreated)
			return err
		}},
		step{"create budget with missing fields", func(ctx context.Context) error {
			valid := map[string]any{"category": "shopping", "amount": 100.0, "month": month}
			return r.rejectMissing(ctx, "budgets", valid,
				missingFieldCases(model.BudgetRequiredFields, "amount", "month"), nil)
		}},
		step{"update existing budget", func(ctx context.Context) error {
			_, err := r.send(ctx, http.MethodPost, "budgets", map[string]any{
				"category": category,
				"amount":   updatedAmount,
				"month":    month,
			}, http.StatusOK)
			return err
		}},
		step{"verify budget was updated in place", func(ctx context.Context) error {
			budgets, err := r.list(ctx, "budgets")
			if err != nil {
				return err
			}
			var matches []map[string]any
			for _, el := range budgets {
				b, ok := el.(map[string]any)
				if !ok {
					return expect.Failf("budget list contains %T, want objects", el)
				}
				if b["category"] == category && b["month"] == month {
					matches = append(matches, b)
				}
			}
			if len(matches) != 1 {
				return expect.Failf("expected exactly one %s budget for %s, found %d", category, month, len(matches))
			}
			amount, err := expect.Field[float64](matches[0], "amount")
			if err != nil {
				return err
			}
			if amount != updatedAmount {
				return expect.Failf("budget amount is %v, want %v", amount, updatedAmount)
			}
			return nil
		}},
	)
}

// CheckAnalytics verifies the shape of the analytics aggregate.
func (r *Runner) CheckAnalytics(ctx context.Context) GroupResult {
	g := r.newGroup(GroupAnalytics)
	return g.run(ctx,
		step{"get analytics data", func(ctx context.Context) error {
			resp, err := r.send(ctx, http.MethodGet, "analytics", nil, http.StatusOK)
			if err != nil {
				return err
			}
			analytics, err := resp.Object()
			if err != nil {
				return err
			}
			if err := expect.Fields(analytics, "analytics", model.AnalyticsFields...); err != nil {
				return err
			}
			comparison, err := expect.Field[[]any](analytics, "budgetComparison")
			if err != nil {
				return err
			}
			return expect.EachObject(comparison, "budgetComparison", model.BudgetComparisonFields...)
		}},
	)
}
