package cron

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

type CronJobManager struct {
	mutex   sync.Mutex
	running sync.WaitGroup
	jobs    map[CronJob]*time.Timer
	stopped chan struct{}
	once    sync.Once
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{
		jobs:    make(map[CronJob]*time.Timer),
		stopped: make(chan struct{}),
	}
}

func (m *CronJobManager) Register(job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.jobs[job] = nil
}

// Start blocks until ctx is done or Cancel is called, then waits for the running jobs.
func (m *CronJobManager) Start(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Cron job manager started")

	m.mutex.Lock()
	for job := range m.jobs {
		if job.RunNow() {
			go m.run(ctx, job)
		} else {
			m.scheduleLocked(ctx, job)
		}
	}
	m.mutex.Unlock()

	select {
	case <-ctx.Done():
		m.Cancel(ctx)
	case <-m.stopped:
	}

	m.running.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) Cancel(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, timer := range m.jobs {
		if timer != nil {
			timer.Stop()
		}
	}

	// Clear all jobs to not schedule them again.
	m.jobs = make(map[CronJob]*time.Timer)
	m.once.Do(func() { close(m.stopped) })
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	if _, ok := m.jobs[job]; !ok {
		m.mutex.Unlock()
		return
	}
	m.running.Add(1)
	m.mutex.Unlock()
	defer m.running.Done()

	xcontext.Logger(ctx).Infof("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%T ok", job)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.scheduleLocked(ctx, job)
}

// scheduleLocked must be called with the mutex held. Only jobs existing in the job list are
// scheduled.
func (m *CronJobManager) scheduleLocked(ctx context.Context, job CronJob) {
	if _, ok := m.jobs[job]; ok {
		m.jobs[job] = time.AfterFunc(time.Until(job.Next()), func() { m.run(ctx, job) })
	}
}
