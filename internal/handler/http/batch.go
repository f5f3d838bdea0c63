package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"
)

const cronActor = "cron"

type BatchHandler interface {
	// Cron is called by an external scheduler and authenticated by the cron secret.
	Cron(w http.ResponseWriter, r *http.Request)
	// Trigger runs a job on behalf of an admin.
	Trigger(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
}

type batchHandlerImpl struct {
	batchService batch.Service
	group        singleflight.Group
}

func NewBatchHandler(batchService batch.Service) BatchHandler {
	return &batchHandlerImpl{batchService: batchService}
}

func (h *batchHandlerImpl) Cron(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, cronActor)
}

func (h *batchHandlerImpl) Trigger(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.run(w, r, actorID)
}

func (h *batchHandlerImpl) run(w http.ResponseWriter, r *http.Request, triggeredBy string) {
	job, err := batch.ParseJob(chi.URLParam(r, "job"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req batch.TriggerRequest
	if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		if !decode(w, r, &req, "TriggerBatch") {
			return
		}
	}
	if period := r.URL.Query().Get("period"); period != "" && req.Period == "" {
		req.Period = period
	}
	if queryBool(r, "dry_run", false) {
		req.DryRun = true
	}
	if err := req.Validate(job); err != nil {
		response.HandleError(w, err)
		return
	}

	// Concurrent triggers of the same job and period share one execution.
	key := string(job) + ":" + req.Period + ":" + strconv.FormatBool(req.DryRun)
	ctx := context.WithoutCancel(r.Context())
	v, err, shared := h.group.Do(key, func() (any, error) {
		return h.batchService.Run(ctx, job, req, triggeredBy)
	})
	if err != nil {
		slog.Warn("Batch run failed", "job", job, "period", req.Period, "triggered_by", triggeredBy, "error", err)
		response.HandleError(w, err)
		return
	}
	result := v.(batch.RunResponse)
	slog.Info("Batch run finished", "job", job, "period", result.Period, "status", result.Status, "shared", shared)
	response.SuccessWithMessage(w, "Batch job "+string(job)+" finished", result)
}

func (h *batchHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	var job *batch.Job
	if s := r.URL.Query().Get("job"); s != "" {
		j, err := batch.ParseJob(s)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		job = &j
	}

	results, err := h.batchService.ListRuns(r.Context(), job, queryInt(r, "limit", 50))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}
