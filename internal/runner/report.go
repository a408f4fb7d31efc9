package runner

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/leca/finance-conformance/internal/expect"
)

// Kind classifies why a step failed.
type Kind string

const (
	// KindAssertion is a response that violated the expected contract.
	KindAssertion Kind = "assertion"
	// KindUnexpected is any other fault: transport, decoding, cancellation.
	KindUnexpected Kind = "unexpected"
)

func kindOf(err error) Kind {
	if expect.IsFailure(err) {
		return KindAssertion
	}
	return KindUnexpected
}

// StepResult is the outcome of one request/assert step.
type StepResult struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Kind     Kind          `json:"kind,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`

	err error
}

// Err returns the error that failed the step, if any.
func (s StepResult) Err() error {
	return s.err
}

// GroupResult is the outcome of one check group.
type GroupResult struct {
	Name   string       `json:"name"`
	Passed bool         `json:"passed"`
	Steps  []StepResult `json:"steps"`
}

// Failed returns the failing step, or nil.
func (g *GroupResult) Failed() *StepResult {
	for i := range g.Steps {
		if !g.Steps[i].Passed {
			return &g.Steps[i]
		}
	}
	return nil
}

// Report is the outcome of a whole run.
type Report struct {
	RunID     string        `json:"runId"`
	APIURL    string        `json:"apiUrl"`
	FailFast  bool          `json:"failFast"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Passed    bool          `json:"passed"`
	Groups    []GroupResult `json:"groups"`

	err error
}

// Group looks up a group result by name.
func (r *Report) Group(name string) (*GroupResult, bool) {
	for i := range r.Groups {
		if r.Groups[i].Name == name {
			return &r.Groups[i], true
		}
	}
	return nil, false
}

// Err joins the errors of every failed step, or returns nil when the run passed.
func (r *Report) Err() error {
	errs := []error{r.err}
	for i := range r.Groups {
		if s := r.Groups[i].Failed(); s != nil {
			errs = append(errs, s.err)
		}
	}
	return errors.Join(errs...)
}

// JSON renders the report for storage.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
