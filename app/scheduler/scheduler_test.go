package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type cleanerMock struct{ calls atomic.Int32 }

func (m *cleanerMock) ReleaseExpired(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	return 0, nil
}

type reminderMock struct{ calls atomic.Int32 }

func (m *reminderMock) RemindOverdue(ctx context.Context) (int, error) {
	m.calls.Add(1)
	return 0, nil
}

func TestNew_RegistersJobs(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cl, rm := &cleanerMock{}, &reminderMock{}

	c, err := New(context.Background(), Jobs{Cleaner: cl, Reminder: rm}, Schedule{Sweep: "0 0 * * *", Overdue: "0 9 * * *"}, log)
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 2)

	// run the wrapped jobs directly instead of waiting for the clock
	for _, e := range entries {
		e.WrappedJob.Run()
	}
	require.EqualValues(t, 1, cl.calls.Load())
	require.EqualValues(t, 1, rm.calls.Load())
}

func TestNew_BadSchedule(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := New(context.Background(), Jobs{}, Schedule{Sweep: "every day", Overdue: "0 9 * * *"}, log)
	require.Error(t, err)
}
