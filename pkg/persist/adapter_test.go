package persist_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amithcabraal/pt-dashboard-28/pkg/model"
	"github.com/amithcabraal/pt-dashboard-28/pkg/persist"
	"github.com/amithcabraal/pt-dashboard-28/pkg/storage"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

// fixedClock returns a clock pinned to a known instant.
func fixedClock() func() time.Time {
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	return func() time.Time { return at }
}

func TestAdapter_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := persist.NewAdapter(testLogger(), storage.NewMemorySlot(), fixedClock())

	note := "spiky"
	tests := []model.PerformanceTest{
		{
			ID:          "t1",
			Ref:         "PT-001",
			Name:        "Peak Load",
			Note:        &note,
			Sequence:    2,
			Preparation: model.Preparation{Data: 1, Script: 2, Env: 3},
			Execution:   model.Execution{Target: 500, Achieved: 480},
			Status:      model.StatusPass,
			TestRuns: []model.TestRun{
				{ID: "r1", Fields: map[string]any{"duration": float64(30)}},
			},
		},
		{ID: "t2", Status: model.StatusNeutral, TestRuns: []model.TestRun{}},
	}

	require.NoError(t, adapter.Write(ctx, tests))

	got, lastUpdated, err := adapter.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, tests, got)
	assert.Equal(t, "2024-03-15T10:30:00Z", lastUpdated)
}

func TestAdapter_ReadEmptySlot(t *testing.T) {
	t.Parallel()

	adapter := persist.NewAdapter(testLogger(), storage.NewMemorySlot(), nil)

	tests, lastUpdated, err := adapter.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tests)
	assert.NotNil(t, tests)
	assert.Equal(t, "", lastUpdated)
}

func TestAdapter_ReadLegacyBareArray(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	slot := storage.NewMemorySlot()

	legacy := `[{"id":"t1","ref":"","name":"Old","sequence":0,` +
		`"preparation":{"data":0,"script":0,"env":0},` +
		`"execution":{"target":0,"achieved":0},"status":"neutral","testRuns":[]}]`
	require.NoError(t, slot.Write(ctx, []byte(legacy)))

	adapter := persist.NewAdapter(testLogger(), slot, nil)

	tests, lastUpdated, err := adapter.Read(ctx)
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, "Old", tests[0].Name)
	assert.Equal(t, "", lastUpdated)
}

func TestAdapter_ReadCorruptPayload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for _, payload := range []string{"{not json", "[{\"id\":", `"just a string"`} {
		slot := storage.NewMemorySlot()
		require.NoError(t, slot.Write(ctx, []byte(payload)))

		adapter := persist.NewAdapter(testLogger(), slot, nil)

		_, _, err := adapter.Read(ctx)
		require.Error(t, err)

		var derr *persist.DeserializationError
		assert.True(t, errors.As(err, &derr), "payload %q", payload)
	}
}

// failingSlot fails every operation, standing in for unavailable storage.
type failingSlot struct{}

func (failingSlot) Read(context.Context) ([]byte, bool, error) {
	return nil, false, errors.New("storage unavailable")
}

func (failingSlot) Write(context.Context, []byte) error {
	return errors.New("storage full")
}

func TestAdapter_StorageErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := persist.NewAdapter(testLogger(), failingSlot{}, nil)

	err := adapter.Write(ctx, nil)
	require.Error(t, err)

	var serr *persist.StorageError
	assert.True(t, errors.As(err, &serr))

	_, _, err = adapter.Read(ctx)
	require.Error(t, err)
	assert.True(t, errors.As(err, &serr))
}

func TestAdapter_WriteTimestampFromClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	slot := storage.NewMemorySlot()
	adapter := persist.NewAdapter(testLogger(), slot, fixedClock())

	require.NoError(t, adapter.Write(ctx, []model.PerformanceTest{}))

	raw, found, err := slot.Read(ctx)
	require.NoError(t, err)
	require.True(t, found)

	var env map[string]any
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "2024-03-15T10:30:00Z", env["lastUpdated"])
	assert.Equal(t, []any{}, env["tests"])
}

func TestDecodeTests_NullYieldsEmpty(t *testing.T) {
	t.Parallel()

	tests, err := persist.DecodeTests([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, tests)
	assert.Empty(t, tests)
}
