// Package persist reads and writes the test collection to a single
// storage slot, wrapped in an envelope carrying the last-updated
// timestamp. It tolerates the legacy format where the slot holds a bare
// test array without the envelope.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/amithcabraal/pt-dashboard-28/pkg/model"
	"github.com/amithcabraal/pt-dashboard-28/pkg/storage"
	"github.com/sirupsen/logrus"
)

// Envelope is the persisted document shape.
type Envelope struct {
	Tests       []model.PerformanceTest `json:"tests"`
	LastUpdated string                  `json:"lastUpdated,omitempty"`
}

// Adapter persists the test collection to a storage slot. The clock is
// injected so tests can pin the lastUpdated timestamp.
type Adapter struct {
	log   logrus.FieldLogger
	slot  storage.Slot
	clock func() time.Time
}

// NewAdapter creates an Adapter over the given slot. clock may be nil,
// in which case time.Now is used.
func NewAdapter(
	log logrus.FieldLogger,
	slot storage.Slot,
	clock func() time.Time,
) *Adapter {
	if clock == nil {
		clock = time.Now
	}

	return &Adapter{
		log:   log.WithField("component", "persist"),
		slot:  slot,
		clock: clock,
	}
}

// Now returns the adapter's current time, from the injected clock.
func (a *Adapter) Now() time.Time {
	return a.clock()
}

// Write wraps tests with the current timestamp and overwrites the slot.
func (a *Adapter) Write(
	ctx context.Context, tests []model.PerformanceTest,
) error {
	env := Envelope{
		Tests:       tests,
		LastUpdated: a.clock().UTC().Format(time.RFC3339),
	}

	if env.Tests == nil {
		env.Tests = []model.PerformanceTest{}
	}

	data, err := json.Marshal(env)
	if err != nil {
		return &StorageError{Op: "write", Err: err}
	}

	if err := a.slot.Write(ctx, data); err != nil {
		return &StorageError{Op: "write", Err: err}
	}

	a.log.WithField("tests", len(env.Tests)).Debug("Slot written")

	return nil
}

// Read returns the stored tests and the lastUpdated timestamp.
// An empty slot yields an empty collection and no timestamp. A legacy
// bare-array payload yields its tests and no timestamp. A payload that
// decodes as neither shape fails with a DeserializationError.
func (a *Adapter) Read(
	ctx context.Context,
) ([]model.PerformanceTest, string, error) {
	data, found, err := a.slot.Read(ctx)
	if err != nil {
		return nil, "", &StorageError{Op: "read", Err: err}
	}

	if !found {
		return []model.PerformanceTest{}, "", nil
	}

	tests, lastUpdated, err := Decode(data)
	if err != nil {
		return nil, "", err
	}

	return tests, lastUpdated, nil
}

// Decode parses a slot payload in either the envelope or the legacy
// bare-array format.
func Decode(data []byte) ([]model.PerformanceTest, string, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")

	// Legacy format: the slot holds the bare test array.
	if len(trimmed) > 0 && trimmed[0] == '[' {
		tests, err := DecodeTests(data)
		if err != nil {
			return nil, "", err
		}

		return tests, "", nil
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", &DeserializationError{Err: err}
	}

	if env.Tests == nil {
		env.Tests = []model.PerformanceTest{}
	}

	return env.Tests, env.LastUpdated, nil
}

// DecodeTests parses a bare test array, the shape import files use.
func DecodeTests(data []byte) ([]model.PerformanceTest, error) {
	var tests []model.PerformanceTest
	if err := json.Unmarshal(data, &tests); err != nil {
		return nil, &DeserializationError{Err: err}
	}

	if tests == nil {
		tests = []model.PerformanceTest{}
	}

	return tests, nil
}
