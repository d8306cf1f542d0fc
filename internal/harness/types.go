package harness

// TraceEvent records what one step did.
type TraceEvent struct {
	Step int    `json:"step"`
	Op   string `json:"op"`

	// Requests is the number of endpoint requests made during the step and
	// Query the text of the last one.
	Requests int    `json:"requests"`
	Query    string `json:"query,omitempty"`

	// Columns are the returned schema names; "" marks an unknown field.
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`

	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
	UserSafe  bool   `json:"user_safe,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
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

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}

// RequestCount sums endpoint requests over the trace.
func (r *Result) RequestCount() int {
	n := 0
	for _, ev := range r.Trace {
		n += ev.Requests
	}
	return n
}
