// Package model defines the performance test records tracked by the
// dashboard and the merge semantics used for partial updates.
package model

import (
	"encoding/json"
	"sort"
)

// Status labels a performance test. The tracking layer treats it as
// opaque data; these are the values the dashboard UI assigns.
type Status string

// Known status values. StatusNeutral is the default for new tests.
const (
	StatusNeutral    Status = "neutral"
	StatusPass       Status = "pass"
	StatusFail       Status = "fail"
	StatusBlocked    Status = "blocked"
	StatusInProgress Status = "in-progress"
)

// Preparation holds the three preparation readiness sub-scores.
type Preparation struct {
	Data   int `json:"data"`
	Script int `json:"script"`
	Env    int `json:"env"`
}

// Execution holds the throughput metrics for a test.
type Execution struct {
	Target   float64 `json:"target"`
	Achieved float64 `json:"achieved"`
}

// PerformanceTest is a single tracked performance test. ID is unique
// across the collection and immutable once created. Sequence controls
// display order only; it is not required to be unique.
type PerformanceTest struct {
	ID          string      `json:"id"`
	Ref         string      `json:"ref"`
	Name        string      `json:"name"`
	Note        *string     `json:"note,omitempty"`
	Sequence    int         `json:"sequence"`
	Preparation Preparation `json:"preparation"`
	Execution   Execution   `json:"execution"`
	Status      Status      `json:"status"`
	TestRuns    []TestRun   `json:"testRuns"`
}

// TestRun is a single recorded run of a test. Beyond the ID, its fields
// are owned by the run-entry UI and carried through opaquely.
type TestRun struct {
	ID     string
	Fields map[string]any
}

// MarshalJSON flattens the opaque fields and the ID into one object.
func (r TestRun) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}

	out["id"] = r.ID

	return json.Marshal(out)
}

// UnmarshalJSON splits the ID out of the stored object and keeps the
// remaining fields opaque.
func (r *TestRun) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	if id, ok := m["id"].(string); ok {
		r.ID = id
	}

	delete(m, "id")

	r.Fields = m

	return nil
}

// TestUpdate is a partial update of a PerformanceTest. Nil fields are
// retained; non-nil fields overwrite.
type TestUpdate struct {
	Ref         *string      `json:"ref,omitempty"`
	Name        *string      `json:"name,omitempty"`
	Note        *string      `json:"note,omitempty"`
	Sequence    *int         `json:"sequence,omitempty"`
	Preparation *Preparation `json:"preparation,omitempty"`
	Execution   *Execution   `json:"execution,omitempty"`
	Status      *Status      `json:"status,omitempty"`
}

// Apply merges the update over t, field by field.
func (u TestUpdate) Apply(t *PerformanceTest) {
	if u.Ref != nil {
		t.Ref = *u.Ref
	}

	if u.Name != nil {
		t.Name = *u.Name
	}

	if u.Note != nil {
		t.Note = u.Note
	}

	if u.Sequence != nil {
		t.Sequence = *u.Sequence
	}

	if u.Preparation != nil {
		t.Preparation = *u.Preparation
	}

	if u.Execution != nil {
		t.Execution = *u.Execution
	}

	if u.Status != nil {
		t.Status = *u.Status
	}
}

// NewTest returns a PerformanceTest with the given ID and every other
// field defaulted, then applies the update over the defaults.
func NewTest(id string, fields TestUpdate) PerformanceTest {
	t := PerformanceTest{
		ID:       id,
		Status:   StatusNeutral,
		TestRuns: []TestRun{},
	}

	fields.Apply(&t)

	return t
}

// Clone returns a deep copy of t.
func (t PerformanceTest) Clone() PerformanceTest {
	out := t

	if t.Note != nil {
		note := *t.Note
		out.Note = &note
	}

	out.TestRuns = make([]TestRun, len(t.TestRuns))

	for i, r := range t.TestRuns {
		fields := make(map[string]any, len(r.Fields))
		for k, v := range r.Fields {
			fields[k] = v
		}

		out.TestRuns[i] = TestRun{ID: r.ID, Fields: fields}
	}

	return out
}

// CloneTests returns a deep copy of the given collection.
func CloneTests(tests []PerformanceTest) []PerformanceTest {
	out := make([]PerformanceTest, len(tests))
	for i, t := range tests {
		out[i] = t.Clone()
	}

	return out
}

// SortedBySequence returns a copy of tests ordered by Sequence
// ascending, stable on ties. The input order is never mutated.
func SortedBySequence(tests []PerformanceTest) []PerformanceTest {
	out := CloneTests(tests)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})

	return out
}
