package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vismaya/demandops/internal/apierrors"
	"github.com/vismaya/demandops/internal/jobs"
)

// JobsHandler exposes the background job scheduler.
type JobsHandler struct {
	scheduler *jobs.Scheduler
}

func NewJobsHandler(scheduler *jobs.Scheduler) *JobsHandler {
	return &JobsHandler{scheduler: scheduler}
}

// List handles GET /jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	registered := h.scheduler.ListJobs()

	items := make([]map[string]interface{}, 0, len(registered))
	for _, job := range registered {
		items = append(items, map[string]interface{}{
			"name":     job.Name,
			"schedule": job.Schedule,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  items,
		"total": len(items),
	})
}

// Run handles POST /jobs/{name}/run. The job executes asynchronously.
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.scheduler.RunNow(name); err != nil {
		apierrors.NewNotFoundError("job", name).Write(w, r)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job":     name,
		"started": true,
	})
}
