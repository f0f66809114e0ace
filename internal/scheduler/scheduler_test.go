package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	mu         sync.Mutex
	ticks      int
	refreshes  int
	refreshErr error
	slate      string
}

func (f *fakeJobs) TickWatches(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks++
}

func (f *fakeJobs) RefreshDirectory(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeJobs) TodaysSlate(context.Context) (string, error) {
	return f.slate, nil
}

func (f *fakeJobs) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ticks, f.refreshes
}

func newStartedScheduler(t *testing.T, jobs *fakeJobs, send func(string) error) *Scheduler {
	t.Helper()
	s, err := NewScheduler(jobs, send, Options{TickInterval: time.Hour, SlateHour: 12})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestScheduler_RegistersJobs(t *testing.T) {
	s := newStartedScheduler(t, &fakeJobs{}, func(string) error { return nil })

	var names []string
	for _, j := range s.s.Jobs() {
		names = append(names, j.Name())
	}
	assert.ElementsMatch(t, []string{JobWatchTick, JobDirectory, JobDailySlate}, names)
}

func TestScheduler_RunNow(t *testing.T) {
	jobs := &fakeJobs{refreshErr: errors.New("upstream down")}
	s := newStartedScheduler(t, jobs, func(string) error { return nil })

	require.NoError(t, s.RunNow(JobWatchTick))
	require.NoError(t, s.RunNow(JobDirectory))

	assert.Eventually(t, func() bool {
		ticks, refreshes := jobs.counts()
		return ticks == 1 && refreshes == 1
	}, time.Second, 10*time.Millisecond)

	assert.Error(t, s.RunNow("missing"))
}

func TestScheduler_SlateIsSent(t *testing.T) {
	sent := make(chan string, 1)
	jobs := &fakeJobs{slate: "🏀 *Today's games*"}
	s := newStartedScheduler(t, jobs, func(msg string) error {
		sent <- msg
		return nil
	})

	require.NoError(t, s.RunNow(JobDailySlate))

	select {
	case msg := <-sent:
		assert.Equal(t, jobs.slate, msg)
	case <-time.After(time.Second):
		t.Fatal("slate was not sent")
	}
}

func TestNewScheduler_BadCron(t *testing.T) {
	s, err := NewScheduler(&fakeJobs{}, func(string) error { return nil }, Options{DirectoryCron: "not a cron"})
	require.NoError(t, err)
	assert.Error(t, s.Start())
	_ = s.Stop()
}
