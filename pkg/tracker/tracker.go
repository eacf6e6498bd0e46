// Package tracker holds the canonical in-memory performance test
// collection and the CRUD operations that mutate it. Every mutation
// computes the new collection, persists it, and only then publishes the
// new in-memory state, so observers never see memory and storage
// diverge.
package tracker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/amithcabraal/pt-dashboard-28/pkg/model"
	"github.com/amithcabraal/pt-dashboard-28/pkg/persist"
	"github.com/sirupsen/logrus"
)

// Tracker is the application state store over a persistence adapter.
type Tracker struct {
	log     logrus.FieldLogger
	adapter *persist.Adapter

	mu       sync.Mutex
	tests    []model.PerformanceTest
	onChange []func([]model.PerformanceTest)
}

// New creates a Tracker over the given adapter, starting empty. Call
// Load to hydrate from storage.
func New(log logrus.FieldLogger, adapter *persist.Adapter) *Tracker {
	return &Tracker{
		log:     log.WithField("component", "tracker"),
		adapter: adapter,
		tests:   []model.PerformanceTest{},
	}
}

// Load hydrates the in-memory collection from storage.
func (tr *Tracker) Load(ctx context.Context) error {
	tests, lastUpdated, err := tr.adapter.Read(ctx)
	if err != nil {
		return err
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.tests = tests

	tr.log.WithField("tests", len(tests)).
		WithField("last_updated", lastUpdated).
		Info("Test collection loaded")

	return nil
}

// OnChange registers a callback invoked with a copy of the collection
// after every published mutation.
func (tr *Tracker) OnChange(fn func([]model.PerformanceTest)) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.onChange = append(tr.onChange, fn)
}

// Tests returns a copy of the canonical collection in stored order.
func (tr *Tracker) Tests() []model.PerformanceTest {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	return model.CloneTests(tr.tests)
}

// Get returns a copy of the test with the given ID.
func (tr *Tracker) Get(id string) (model.PerformanceTest, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	for i := range tr.tests {
		if tr.tests[i].ID == id {
			return tr.tests[i].Clone(), true
		}
	}

	return model.PerformanceTest{}, false
}

// Sorted returns a copy of the collection ordered by Sequence
// ascending, stable on ties. The canonical stored order is untouched.
func (tr *Tracker) Sorted() []model.PerformanceTest {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	return model.SortedBySequence(tr.tests)
}

// LastUpdated reads the persisted timestamp.
func (tr *Tracker) LastUpdated(ctx context.Context) (string, error) {
	_, lastUpdated, err := tr.adapter.Read(ctx)

	return lastUpdated, err
}

// mutate runs op over a copy of the collection, persists the result,
// swaps it in, and publishes. op reports false to signal a no-op, in
// which case nothing is persisted or published. A persistence failure
// leaves the in-memory collection untouched.
func (tr *Tracker) mutate(
	ctx context.Context,
	op func(tests []model.PerformanceTest) ([]model.PerformanceTest, bool),
) (bool, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	next, changed := op(model.CloneTests(tr.tests))
	if !changed {
		return false, nil
	}

	if err := tr.adapter.Write(ctx, next); err != nil {
		return false, err
	}

	tr.tests = next

	tr.publishLocked()

	return true, nil
}

// publishLocked invokes the change callbacks. Callers hold tr.mu.
func (tr *Tracker) publishLocked() {
	for _, fn := range tr.onChange {
		fn(model.CloneTests(tr.tests))
	}
}

// ImportAll replaces the entire collection verbatim.
func (tr *Tracker) ImportAll(
	ctx context.Context, newTests []model.PerformanceTest,
) error {
	_, err := tr.mutate(ctx, func(_ []model.PerformanceTest) ([]model.PerformanceTest, bool) {
		if newTests == nil {
			return []model.PerformanceTest{}, true
		}

		return model.CloneTests(newTests), true
	})

	return err
}

// CreateTest appends a new test with a fresh unique ID, filling omitted
// fields from documented defaults, and returns it.
func (tr *Tracker) CreateTest(
	ctx context.Context, fields model.TestUpdate,
) (model.PerformanceTest, error) {
	var created model.PerformanceTest

	_, err := tr.mutate(ctx, func(tests []model.PerformanceTest) ([]model.PerformanceTest, bool) {
		taken := make(map[string]struct{}, len(tests))
		for _, t := range tests {
			taken[t.ID] = struct{}{}
		}

		created = model.NewTest(newID(taken), fields)

		return append(tests, created), true
	})
	if err != nil {
		return model.PerformanceTest{}, err
	}

	tr.log.WithField("id", created.ID).
		WithField("name", created.Name).
		Debug("Test created")

	return created, nil
}

// UpdateTest merges fields over the test with the given ID. An unknown
// ID is a silent no-op, not an error; found reports whether the test
// existed.
func (tr *Tracker) UpdateTest(
	ctx context.Context, id string, fields model.TestUpdate,
) (found bool, err error) {
	return tr.mutate(ctx, func(tests []model.PerformanceTest) ([]model.PerformanceTest, bool) {
		for i := range tests {
			if tests[i].ID == id {
				fields.Apply(&tests[i])

				return tests, true
			}
		}

		return nil, false
	})
}

// DeleteTest removes the test with the given ID. Unknown IDs are a
// silent no-op.
func (tr *Tracker) DeleteTest(
	ctx context.Context, id string,
) (found bool, err error) {
	return tr.mutate(ctx, func(tests []model.PerformanceTest) ([]model.PerformanceTest, bool) {
		for i := range tests {
			if tests[i].ID == id {
				return append(tests[:i], tests[i+1:]...), true
			}
		}

		return nil, false
	})
}

// AddRun appends a run with a fresh ID (unique within the test) to the
// test with the given ID. Unknown test IDs are a silent no-op.
func (tr *Tracker) AddRun(
	ctx context.Context, testID string, fields map[string]any,
) (run model.TestRun, found bool, err error) {
	found, err = tr.mutate(ctx, func(tests []model.PerformanceTest) ([]model.PerformanceTest, bool) {
		for i := range tests {
			if tests[i].ID != testID {
				continue
			}

			taken := make(map[string]struct{}, len(tests[i].TestRuns))
			for _, r := range tests[i].TestRuns {
				taken[r.ID] = struct{}{}
			}

			run = model.TestRun{ID: newID(taken), Fields: cloneFields(fields)}
			tests[i].TestRuns = append(tests[i].TestRuns, run)

			return tests, true
		}

		return nil, false
	})

	return run, found, err
}

// UpdateRun replaces the fields of the run with the given IDs, keeping
// its ID. Unknown test or run IDs are a silent no-op.
func (tr *Tracker) UpdateRun(
	ctx context.Context, testID, runID string, fields map[string]any,
) (found bool, err error) {
	return tr.mutate(ctx, func(tests []model.PerformanceTest) ([]model.PerformanceTest, bool) {
		for i := range tests {
			if tests[i].ID != testID {
				continue
			}

			for j := range tests[i].TestRuns {
				if tests[i].TestRuns[j].ID == runID {
					tests[i].TestRuns[j] = model.TestRun{
						ID:     runID,
						Fields: cloneFields(fields),
					}

					return tests, true
				}
			}

			return nil, false
		}

		return nil, false
	})
}

// DeleteRun removes the run with the given IDs. Unknown test or run IDs
// are a silent no-op.
func (tr *Tracker) DeleteRun(
	ctx context.Context, testID, runID string,
) (found bool, err error) {
	return tr.mutate(ctx, func(tests []model.PerformanceTest) ([]model.PerformanceTest, bool) {
		for i := range tests {
			if tests[i].ID != testID {
				continue
			}

			runs := tests[i].TestRuns
			for j := range runs {
				if runs[j].ID == runID {
					tests[i].TestRuns = append(runs[:j], runs[j+1:]...)

					return tests, true
				}
			}

			return nil, false
		}

		return nil, false
	})
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}

	return out
}

// newID generates a short random hex ID (8 characters) not present in
// taken.
func newID(taken map[string]struct{}) string {
	for {
		id := generateShortID()
		if _, exists := taken[id]; !exists {
			return id
		}
	}
}

// generateShortID generates a short random hex ID (8 characters).
func generateShortID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based ID if crypto/rand fails.
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xFFFFFFFF)
	}

	return hex.EncodeToString(b)
}
