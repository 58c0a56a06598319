package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *stubJob) Name() string        { return j.name }
func (j *stubJob) Description() string { return "stub job" }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

// tightSchedule is always due on the next tick.
type tightSchedule struct{}

func (tightSchedule) Next(t time.Time) time.Time { return t.Add(time.Millisecond) }
func (tightSchedule) String() string             { return "@tight" }

func TestRegisterValidation(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})

	assert.ErrorIs(t, s.Register(nil, tightSchedule{}), ErrNilJob)
	assert.ErrorIs(t, s.Register(&stubJob{name: "a"}, nil), ErrNilSchedule)

	require.NoError(t, s.Register(&stubJob{name: "a"}, tightSchedule{}))
	assert.ErrorIs(t, s.Register(&stubJob{name: "a"}, tightSchedule{}), ErrJobAlreadyExists)
}

func TestRunNowExecutesAndRecordsResult(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	job := &stubJob{name: "refresh"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "refresh")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), job.runs.Load())

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "refresh", jobs[0].LastResult.JobName)
}

func TestRunNowSurfacesJobError(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	jobErr := errors.New("remote unreachable")
	require.NoError(t, s.Register(&stubJob{name: "refresh", err: jobErr}, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "refresh")
	assert.ErrorIs(t, err, jobErr)
	assert.False(t, result.Success)
}

func TestRunNowUnknownJob(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	_, err := s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestLifecycle(t *testing.T) {
	s := NewScheduler(SchedulerConfig{TickInterval: 10 * time.Millisecond})

	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestDueJobRunsOnTick(t *testing.T) {
	s := NewScheduler(SchedulerConfig{TickInterval: 5 * time.Millisecond})
	job := &stubJob{name: "refresh"}
	require.NoError(t, s.Register(job, tightSchedule{}))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestDisabledJobDoesNotRun(t *testing.T) {
	s := NewScheduler(SchedulerConfig{TickInterval: 5 * time.Millisecond})
	job := &stubJob{name: "refresh"}
	require.NoError(t, s.Register(job, tightSchedule{}))
	require.NoError(t, s.DisableJob("refresh"))

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Equal(t, int64(0), job.runs.Load())
}

func TestIntervalScheduleClampsFloor(t *testing.T) {
	sched := NewIntervalSchedule(0)
	assert.Equal(t, time.Second, sched.Interval)

	now := time.Now()
	assert.Equal(t, now.Add(time.Minute), NewIntervalSchedule(time.Minute).Next(now))
}
