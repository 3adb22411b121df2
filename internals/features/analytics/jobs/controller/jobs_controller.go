package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"
	"go.uber.org/zap"

	helper "kampusku_backend/internals/helpers"
	"kampusku_backend/internals/scheduler"
)

const manualRunTimeout = 2 * time.Hour

type JobsController struct {
	Runner *scheduler.Runner
	Log    *zap.Logger
}

func NewJobsController(runner *scheduler.Runner, log *zap.Logger) *JobsController {
	return &JobsController{Runner: runner, Log: log}
}

// GET /api/a/jobs
func (ctrl *JobsController) List(c *fiber.Ctx) error {
	return helper.JsonOK(c, "ok", ctrl.Runner.Status())
}

// POST /api/a/jobs/:name/run
func (ctrl *JobsController) Run(c *fiber.Ctx) error {
	// copied: the param buffer is reused once the handler returns
	name := utils.SafeString(c.Params("name"))
	if ctrl.Runner.Lookup(name) == nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Unknown job")
	}
	if ctrl.Runner.IsRunning(name) {
		return helper.JsonError(c, fiber.StatusConflict, "Job is already running")
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), manualRunTimeout)
		defer cancel()
		if err := ctrl.Runner.RunNow(ctx, name); err != nil {
			ctrl.Log.Warn("[JOB] manual run failed", zap.String("job", name), zap.Error(err))
		}
	}()
	return helper.JsonAccepted(c, "Job started", fiber.Map{"job": name})
}
