package orchestrator

import (
	"encoding/json"
	"time"
)

// Status is the outcome of a task.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusPartial Status = "partial"
)

// TaskReport is the outcome of one task, or of one unit inside a task.
type TaskReport struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"-"`
	Details  map[string]any `json:"details,omitempty"`
	Sub      []TaskReport   `json:"sub,omitempty"`
}

// MarshalJSON renders Duration as a Go duration string.
func (t TaskReport) MarshalJSON() ([]byte, error) {
	type plain TaskReport
	return json.Marshal(struct {
		plain
		Duration string `json:"duration"`
	}{plain(t), t.Duration.String()})
}

func (t *TaskReport) fail(err error) {
	t.Status = StatusFailed
	t.Error = err.Error()
}

func (t *TaskReport) detail(key string, v any) {
	if t.Details == nil {
		t.Details = make(map[string]any)
	}
	t.Details[key] = v
}

// settle derives the status from sub-results: ok when all passed, failed when
// none did, partial otherwise.
func (t *TaskReport) settle() {
	if t.Status == StatusFailed || len(t.Sub) == 0 {
		return
	}
	failed := 0
	for _, s := range t.Sub {
		if s.Status == StatusFailed {
			failed++
		}
	}
	switch {
	case failed == 0:
		t.Status = StatusOK
	case failed == len(t.Sub):
		t.Status = StatusFailed
		if t.Error == "" {
			t.Error = "every unit failed"
		}
	default:
		t.Status = StatusPartial
	}
}

// Report summarizes one run.
type Report struct {
	RunID      string       `json:"run_id"`
	DryRun     bool         `json:"dry_run"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Tasks      []TaskReport `json:"tasks"`
}

// Task returns the report of the named task, or nil.
func (r *Report) Task(name string) *TaskReport {
	for i := range r.Tasks {
		if r.Tasks[i].Name == name {
			return &r.Tasks[i]
		}
	}
	return nil
}

// Failed reports whether any task failed, fully or partially.
func (r *Report) Failed() bool {
	for _, t := range r.Tasks {
		if t.Status == StatusFailed || t.Status == StatusPartial {
			return true
		}
	}
	return false
}
