package rest

import (
	"context"
	"net/http"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// JobRunner triggers a scheduled job outside its schedule.
type JobRunner interface {
	RunNow(ctx context.Context, name string) error
}

type JobHandler struct {
	runner JobRunner
}

func NewJobHandler(runner JobRunner) *JobHandler {
	return &JobHandler{runner: runner}
}

// RunJob handles POST /api/v1/internal/jobs/{job}/run. It blocks until the run finishes.
// The run outlives a disconnected caller: claims a job commits must still be followed by their sends.
func (h *JobHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	job := chi.URLParam(r, "job")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RunJob", "job": job})

	if err := h.runner.RunNow(context.WithoutCancel(r.Context()), job); err != nil {
		writeUseCaseError(w, logger, err, "Job run failed")
		return
	}
	RespondWithJSON(w, http.StatusOK, JobRunResponse{Job: job, Status: "completed"})
}
