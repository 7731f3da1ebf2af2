package blender

import (
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
	"github.com/pgavriel/MOADv2/fs/billy"
	"github.com/pgavriel/MOADv2/internal/logger"
)

type fakeRunner struct {
	exitCodes map[string]int
	errs      map[string]error
	calls     []string
}

func (f *fakeRunner) Run(_ context.Context, input string) (Outcome, error) {
	f.calls = append(f.calls, input)
	if err := f.errs[input]; err != nil {
		return Outcome{ExitCode: -1}, err
	}
	return Outcome{Elapsed: 1500 * time.Millisecond, ExitCode: f.exitCodes[input]}, nil
}

func fixedClock() func() time.Time {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time { return ts }
}

func processedSet(done ...string) ProcessedFunc {
	return func(_ fs.Filesystem, input string) (bool, error) {
		for _, d := range done {
			if d == input {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestBatch_Statuses(t *testing.T) {
	runner := &fakeRunner{
		exitCodes: map[string]int{"b.ply": 1},
		errs:      map[string]error{"c.ply": errors.New(errors.CodeExecutionFailed, "no blender")},
	}
	b := NewBatch(runner, billy.NewInMemoryFS(), WithLogger(logger.Discard()), WithClock(fixedClock()))

	results, err := b.Run(context.Background(), []string{"dir/a.ply", "b.ply", "c.ply"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, "a.ply", results[0].Model)
	assert.Equal(t, 1500*time.Millisecond, results[0].Elapsed)
	assert.Equal(t, StatusFail, results[1].Status)
	assert.Equal(t, 1, results[1].ExitCode)
	assert.Equal(t, StatusFail, results[2].Status)
	assert.Equal(t, []string{"dir/a.ply", "b.ply", "c.ply"}, runner.calls)

	assert.Equal(t, map[Status]int{StatusSuccess: 1, StatusFail: 2}, Summarize(results))
}

func TestBatch_SkipPolicy(t *testing.T) {
	inputs := []string{"a.ply", "b.ply"}
	yes, no := true, false

	tests := []struct {
		name      string
		autoSkip  bool
		check     bool
		answer    *bool
		wantCalls []string
	}{
		{"no check runs everything", false, false, nil, inputs},
		{"auto skip", true, true, &yes, []string{"b.ply"}},
		{"no confirmer skips", false, true, nil, []string{"b.ply"}},
		{"operator reprocesses", false, true, &yes, inputs},
		{"operator declines", false, true, &no, []string{"b.ply"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asked := 0
			opts := []BatchOption{WithLogger(logger.Discard()), WithAutoSkip(tt.autoSkip)}
			if tt.check {
				opts = append(opts, WithProcessedCheck(processedSet("a.ply")))
			}
			if tt.answer != nil {
				opts = append(opts, WithConfirmer(ConfirmFunc(func(_ context.Context, q string) (bool, error) {
					asked++
					assert.Contains(t, q, "already processed")
					return *tt.answer, nil
				})))
			}

			runner := &fakeRunner{}
			results, err := NewBatch(runner, billy.NewInMemoryFS(), opts...).Run(context.Background(), inputs)
			require.NoError(t, err)
			require.Len(t, results, 2)

			assert.Equal(t, tt.wantCalls, runner.calls)
			if tt.answer != nil && !tt.autoSkip {
				assert.Equal(t, 1, asked)
			} else {
				assert.Zero(t, asked)
			}
			if len(tt.wantCalls) == 1 {
				assert.Equal(t, StatusSkipped, results[0].Status)
				assert.Zero(t, results[0].Elapsed)
			}
		})
	}
}

func TestBatch_ConfirmerErrorAborts(t *testing.T) {
	runner := &fakeRunner{}
	b := NewBatch(runner, billy.NewInMemoryFS(),
		WithLogger(logger.Discard()),
		WithProcessedCheck(processedSet("b.ply")),
		WithConfirmer(ConfirmFunc(func(context.Context, string) (bool, error) {
			return false, fmt.Errorf("^C")
		})))

	results, err := b.Run(context.Background(), []string{"a.ply", "b.ply", "c.ply"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeAborted, errors.GetCode(err))
	assert.Len(t, results, 1)
	assert.Equal(t, []string{"a.ply"}, runner.calls)
}

func TestBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	results, err := NewBatch(runner, billy.NewInMemoryFS(), WithLogger(logger.Discard())).Run(ctx, []string{"a.ply"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Empty(t, runner.calls)
}

func TestBatch_AlreadyProcessedOnDisk(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	touch(t, fsys, "data/obj1/fused/obj1_mesh.ply", "data/obj1/fused/baked_texture.png", "data/obj2/fused/obj2_mesh.ply")

	runner := &fakeRunner{}
	b := NewBatch(runner, fsys, WithLogger(logger.Discard()), WithProcessedCheck(AlreadyProcessed), WithAutoSkip(true))

	meshes, err := FindFusedMeshes(fsys, "data", "", nil)
	require.NoError(t, err)
	results, err := b.Run(context.Background(), meshes)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, StatusSkipped, results[0].Status)
	assert.Equal(t, StatusSuccess, results[1].Status)
	assert.Equal(t, []string{filepath.Join("data", "obj2", "fused", "obj2_mesh.ply")}, runner.calls)
}

func TestWriteSummaryCSV(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	started := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	results := []Result{
		{Timestamp: started, Model: "atb1_mesh.ply", Elapsed: 12340 * time.Millisecond, Status: StatusSuccess},
		{Timestamp: started.Add(time.Minute), Model: "atb2, v2_mesh.ply", Status: StatusSkipped},
	}

	path, err := WriteSummaryCSV(fsys, "root", started, results)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("root", "_blender_logs", "20250314_092653_conversion_summary.csv"), path)

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Timestamp", "Model", "TimeSeconds", "Status"},
		{"2025-03-14_09-26-53", "atb1_mesh.ply", "12.34", "success"},
		{"2025-03-14_09-27-53", "atb2, v2_mesh.ply", "0.00", "skipped"},
	}, records)
}

func TestWriteSummaryCSV_Empty(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	path, err := WriteSummaryCSV(fsys, "root", time.Now(), nil)
	require.NoError(t, err)

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Model,TimeSeconds,Status\n", string(data))
}
