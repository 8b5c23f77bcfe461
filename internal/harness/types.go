package harness

import (
	"github.com/roach88/spikegen/internal/engine"
)

// Check is the outcome of one assertion.
type Check struct {
	Type   string `json:"type"`
	Train  string `json:"train,omitempty"`
	Column *int   `json:"column,omitempty"`
	Pass   bool   `json:"pass"`

	// Detail describes the measured value. It depends on the seed and is
	// left out of golden snapshots.
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every check passed.
	Pass bool `json:"pass"`

	Checks []Check `json:"checks"`

	// Errors holds one message per failed check.
	Errors []string `json:"errors,omitempty"`

	// ErrorCode and Stage are set when generation failed.
	ErrorCode string `json:"error_code,omitempty"`
	Stage     string `json:"stage,omitempty"`

	// Run is the generated run; nil when generation failed.
	Run *engine.Run `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Checks: []Check{},
		Errors: []string{},
	}
}

func (r *Result) addCheck(c Check) {
	r.Checks = append(r.Checks, c)
	if !c.Pass {
		r.Pass = false
		r.Errors = append(r.Errors, c.Type+": "+c.Detail)
	}
}
