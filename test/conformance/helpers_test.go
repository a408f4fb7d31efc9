//go:build conformance

package conformance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// apiURL builds a full URL for the given API path suffix.
// path should start with "/" e.g. "/transactions" or "/transactions/{id}"
func apiURL(path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.Trim(apiPrefix, "/") + path
}

// doRequest performs an HTTP request and returns the response.
func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// doJSON performs an HTTP request with an optional JSON body and returns the
// status code and the decoded JSON body.
func doJSON(t *testing.T, method, url string, body any) (int, any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := doRequest(t, req)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal JSON: %v\nbody: %s", err, string(data))
	}
	return resp.StatusCode, raw
}

// doObject is doJSON for endpoints answering a JSON object.
func doObject(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := doJSON(t, method, url, body)
	obj, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("%s %s: expected JSON object, got %T", method, url, raw)
	}
	return status, obj
}

// doArray is doJSON for endpoints answering a JSON array.
func doArray(t *testing.T, method, url string) (int, []any) {
	t.Helper()
	status, raw := doJSON(t, method, url, nil)
	arr, ok := raw.([]any)
	if !ok {
		t.Fatalf("%s %s: expected JSON array, got %T", method, url, raw)
	}
	return status, arr
}

// assertField validates a field exists in an object and has the expected Go type.
// Returns the typed value.
func assertField[T any](t *testing.T, obj map[string]any, field string) T {
	t.Helper()
	val, ok := obj[field]
	if !ok {
		var zero T
		t.Errorf("missing field %q", field)
		return zero
	}
	typed, ok := val.(T)
	if !ok {
		var zero T
		t.Errorf("field %q: expected %T, got %T (%v)", field, zero, val, val)
		return zero
	}
	return typed
}

// assertErrorBody validates the {"error": "..."} shape of a rejection.
func assertErrorBody(t *testing.T, obj map[string]any) {
	t.Helper()
	if msg := assertField[string](t, obj, "error"); msg == "" {
		t.Error("'error' should be a non-empty string")
	}
}

// today returns the current date in the transaction date format.
func today() string {
	return time.Now().Format("2006-01-02")
}

// createTransactionAndCleanup creates a transaction and registers cleanup.
// Returns the created transaction object.
func createTransactionAndCleanup(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	status, tx := doObject(t, "POST", apiURL("/transactions"), body)
	if status != http.StatusCreated {
		t.Fatalf("create transaction failed with status %d: %v", status, tx)
	}

	id, ok := tx["id"].(string)
	if !ok || id == "" {
		t.Fatalf("created transaction missing id: %v", tx)
	}

	t.Cleanup(func() {
		req, _ := http.NewRequest("DELETE", apiURL("/transactions/"+id), nil)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
		}
	})

	return tx
}

// validTransaction returns a payload the backend must accept.
func validTransaction(description string) map[string]any {
	return map[string]any{
		"amount":      75.25,
		"description": description,
		"date":        today(),
		"category":    "entertainment",
	}
}

// skipOnRealBackend skips the test unless it runs against the twin.
func skipOnRealBackend(t *testing.T) {
	t.Helper()
	if !isTwin {
		t.Skip("skipping on real backend")
	}
}
