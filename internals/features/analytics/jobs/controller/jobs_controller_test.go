package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kampusku_backend/internals/scheduler"
)

type recordingJob struct {
	name    string
	release chan struct{}

	mu   sync.Mutex
	runs int
}

func (j *recordingJob) Name() string            { return j.name }
func (j *recordingJob) Interval() time.Duration { return time.Hour }

func (j *recordingJob) Execute(ctx context.Context) error {
	j.mu.Lock()
	j.runs++
	j.mu.Unlock()
	if j.release != nil {
		select {
		case <-j.release:
		case <-ctx.Done():
		}
	}
	return nil
}

func (j *recordingJob) Runs() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func newJobsApp(jobs ...scheduler.Job) (*fiber.App, *scheduler.Runner) {
	runner := scheduler.NewRunner(nil, nil, scheduler.Options{}, jobs...)
	ctrl := NewJobsController(runner, zap.NewNop())
	app := fiber.New()
	app.Get("/jobs", ctrl.List)
	app.Post("/jobs/:name/run", ctrl.Run)
	return app, runner
}

type envelope struct {
	Success   bool           `json:"success"`
	ErrorCode string         `json:"error_code"`
	Data      map[string]any `json:"data"`
}

func decode(t *testing.T, app *fiber.App, method, path string) (int, envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRun_StartsNamedJobInBackground(t *testing.T) {
	job := &recordingJob{name: "risk_calculation"}
	app, runner := newJobsApp(job)

	status, body := decode(t, app, fiber.MethodPost, "/jobs/risk_calculation/run")

	assert.Equal(t, fiber.StatusAccepted, status)
	assert.True(t, body.Success)
	assert.Equal(t, "risk_calculation", body.Data["job"])
	assert.Eventually(t, func() bool {
		_, ok := runner.LastRun("risk_calculation")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, job.Runs())
}

func TestRun_UnknownJob(t *testing.T) {
	app, _ := newJobsApp(&recordingJob{name: "daily_snapshot"})

	status, body := decode(t, app, fiber.MethodPost, "/jobs/nope/run")

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, body.Success)
	assert.Equal(t, "NOT_FOUND", body.ErrorCode)
}

func TestRun_ConflictWhileRunning(t *testing.T) {
	job := &recordingJob{name: "daily_snapshot", release: make(chan struct{})}
	app, runner := newJobsApp(job)
	defer close(job.release)

	status, _ := decode(t, app, fiber.MethodPost, "/jobs/daily_snapshot/run")
	require.Equal(t, fiber.StatusAccepted, status)
	require.Eventually(t, func() bool { return runner.IsRunning("daily_snapshot") },
		2*time.Second, 10*time.Millisecond)

	status, body := decode(t, app, fiber.MethodPost, "/jobs/daily_snapshot/run")

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body.ErrorCode)
	assert.Equal(t, 1, job.Runs())
}
