// internals/scheduler/runner.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"kampusku_backend/internals/helpers/clock"
	"kampusku_backend/internals/helpers/logger"
	"kampusku_backend/internals/metrics"
)

// Job is a unit of periodic background work.
type Job interface {
	Name() string
	Interval() time.Duration
	Execute(ctx context.Context) error
}

var (
	ErrUnknownJob  = errors.New("unknown job")
	ErrJobRunning  = errors.New("job is already running")
	ErrRunnerStart = errors.New("scheduler already started")
)

type Options struct {
	// Tick is a robfig/cron spec, e.g. "@every 1h".
	Tick string
	// RunOnStart runs every job once, StartupDelay after Start.
	RunOnStart   bool
	StartupDelay time.Duration
}

type JobStatus struct {
	Name     string     `json:"name"`
	Interval string     `json:"interval"`
	LastRun  *time.Time `json:"last_run"`
	NextDue  *time.Time `json:"next_due"`
	Running  bool       `json:"running"`
}

// Runner keeps the last successful run of each job and executes the ones
// that are due on every tick. Jobs within a tick run in registration order.
type Runner struct {
	jobs  []Job
	clock clock.Clock
	log   *zap.Logger
	opts  Options

	mu      sync.Mutex
	lastRun map[string]time.Time
	running map[string]bool

	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(clk clock.Clock, log *zap.Logger, opts Options, jobs ...Job) *Runner {
	if opts.Tick == "" {
		opts.Tick = "@every 1h"
	}
	return &Runner{
		jobs:    jobs,
		clock:   clock.OrSystem(clk),
		log:     logger.OrNop(log).Named("scheduler"),
		opts:    opts,
		lastRun: make(map[string]time.Time, len(jobs)),
		running: make(map[string]bool, len(jobs)),
	}
}

// Start registers the tick and returns immediately.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.cron != nil {
		r.mu.Unlock()
		return ErrRunnerStart
	}
	ctx, cancel := context.WithCancel(ctx)
	c := cron.New()
	r.cron = c
	r.cancel = cancel
	r.mu.Unlock()

	if _, err := c.AddFunc(r.opts.Tick, func() { r.Tick(ctx) }); err != nil {
		cancel()
		r.mu.Lock()
		r.cron, r.cancel = nil, nil
		r.mu.Unlock()
		return fmt.Errorf("register tick %q: %w", r.opts.Tick, err)
	}
	c.Start()

	if r.opts.RunOnStart {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			t := time.NewTimer(r.opts.StartupDelay)
			defer t.Stop()
			select {
			case <-t.C:
				r.log.Info("[SCHEDULER] startup run")
				_ = r.RunAll(ctx)
			case <-ctx.Done():
			}
		}()
	}

	names := make([]string, 0, len(r.jobs))
	for _, j := range r.jobs {
		names = append(names, j.Name())
	}
	r.log.Info("⏱ [SCHEDULER] started",
		zap.String("tick", r.opts.Tick),
		zap.Strings("jobs", names),
		zap.Bool("run_on_start", r.opts.RunOnStart),
	)
	return nil
}

// Stop cancels in-flight jobs and waits for them to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	c, cancel := r.cron, r.cancel
	r.mu.Unlock()
	if c == nil {
		return
	}

	cancel()
	<-c.Stop().Done()
	r.wg.Wait()
	r.log.Info("[SCHEDULER] stopped")
}

// Tick runs every job whose interval has elapsed since its last success.
// A job that never succeeded is always due.
func (r *Runner) Tick(ctx context.Context) {
	for _, j := range r.jobs {
		if ctx.Err() != nil {
			return
		}
		if !r.isDue(j) {
			continue
		}
		_ = r.run(ctx, j)
	}
}

// RunAll runs every job once regardless of schedule.
func (r *Runner) RunAll(ctx context.Context) error {
	var errs []error
	for _, j := range r.jobs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := r.run(ctx, j); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) RunNow(ctx context.Context, name string) error {
	j := r.Lookup(name)
	if j == nil {
		return ErrUnknownJob
	}
	return r.run(ctx, j)
}

func (r *Runner) Lookup(name string) Job {
	for _, j := range r.jobs {
		if j.Name() == name {
			return j
		}
	}
	return nil
}

func (r *Runner) LastRun(name string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.lastRun[name]
	return t, ok
}

func (r *Runner) IsRunning(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running[name]
}

func (r *Runner) Status() []JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]JobStatus, 0, len(r.jobs))
	for _, j := range r.jobs {
		st := JobStatus{
			Name:     j.Name(),
			Interval: j.Interval().String(),
			Running:  r.running[j.Name()],
		}
		if t, ok := r.lastRun[j.Name()]; ok {
			last := t
			next := t.Add(j.Interval())
			st.LastRun = &last
			st.NextDue = &next
		}
		out = append(out, st)
	}
	return out
}

func (r *Runner) isDue(j Job) bool {
	r.mu.Lock()
	last, ok := r.lastRun[j.Name()]
	r.mu.Unlock()
	if !ok {
		return true
	}
	return r.clock.Now().Sub(last) >= j.Interval()
}

func (r *Runner) run(ctx context.Context, j Job) error {
	name := j.Name()

	r.mu.Lock()
	if r.running[name] {
		r.mu.Unlock()
		r.log.Warn("[SCHEDULER] still running, skipped", zap.String("job", name))
		metrics.JobRunsTotal.WithLabelValues(name, "skipped").Inc()
		return ErrJobRunning
	}
	r.running[name] = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.running, name)
		r.mu.Unlock()
	}()

	startedAt := r.clock.Now()
	began := time.Now()
	r.log.Info("[SCHEDULER] job started", zap.String("job", name))

	err := r.execute(ctx, j)
	elapsed := time.Since(began)
	metrics.JobDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(name, "failed").Inc()
		r.log.Error("[SCHEDULER] job failed",
			zap.String("job", name),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return fmt.Errorf("job %s: %w", name, err)
	}

	r.mu.Lock()
	r.lastRun[name] = startedAt
	r.mu.Unlock()

	metrics.JobRunsTotal.WithLabelValues(name, "succeeded").Inc()
	r.log.Info("[SCHEDULER] job finished", zap.String("job", name), zap.Duration("elapsed", elapsed))
	return nil
}

func (r *Runner) execute(ctx context.Context, j Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
			r.log.Error("[SCHEDULER] job panicked", zap.String("job", j.Name()), zap.ByteString("stack", debug.Stack()))
		}
	}()
	return j.Execute(ctx)
}
