package harness

// TraceEvent records the outcome of one step.
type TraceEvent struct {
	Step    int      `json:"step"`
	Op      string   `json:"op"`
	Input   string   `json:"input,omitempty"`   // decoded name, value or pattern
	Results []string `json:"results,omitempty"` // decoded names or values returned
	Error   string   `json:"error,omitempty"`   // error code
	Seq     int64    `json:"seq"`               // logical clock after the step
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause matched and no step failed
	// unexpectedly.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
