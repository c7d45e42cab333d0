package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/api/middleware"
	"github.com/davisjr/adaptive-rag/internal/batch"
	"github.com/davisjr/adaptive-rag/internal/jobs"
	"github.com/davisjr/adaptive-rag/internal/models"
	"github.com/davisjr/adaptive-rag/internal/pipeline"
)

// CollectionLister exposes browsable collection metadata.
type CollectionLister interface {
	GetCollections(ctx context.Context) ([]models.Collection, error)
}

// JobQueue is the async submission surface. Nil disables the async routes.
type JobQueue interface {
	Enqueue(ctx context.Context, request batch.QueryRequest) (*jobs.Job, error)
	Get(ctx context.Context, jobID string) (*jobs.Job, error)
}

type Handler struct {
	runner      batch.Runner
	collections CollectionLister
	queue       JobQueue
	logger      *zerolog.Logger
}

func NewHandler(runner batch.Runner, collections CollectionLister, queue JobQueue, logger *zerolog.Logger) *Handler {
	return &Handler{
		runner:      runner,
		collections: collections,
		queue:       queue,
		logger:      logger,
	}
}

// POST /api/v1/query
// Body: QueryRequest
// Returns: models.RunResult
func (h *Handler) Query(req *restful.Request, resp *restful.Response) {
	var queryRequest QueryRequest
	if err := req.ReadEntity(&queryRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("strategy", string(queryRequest.Strategy)).
		Strs("collections", queryRequest.Collections).
		Msg("Start query")

	ctx := req.Request.Context()
	limits := pipeline.Limits{
		MaxGenerationAttempts: queryRequest.MaxGenerationAttempts,
		MaxTransformAttempts:  queryRequest.MaxTransformAttempts,
		Temperature:           queryRequest.Temperature,
	}
	result, err := h.runner.Run(ctx, queryRequest.Strategy, queryRequest.Question, queryRequest.Collections, limits)
	if err != nil {
		h.writeRunError(resp, err)
		return
	}

	h.logger.Info().
		Str("run_id", result.RunID).
		Int("generation_attempts", result.Metrics.GenerationAttempts).
		Int("transform_attempts", result.Metrics.TransformAttempts).
		Bool("degraded", result.Metrics.Disclaimer != "").
		Msg("Query complete")

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// POST /api/v1/query/async
func (h *Handler) QueryAsync(req *restful.Request, resp *restful.Response) {
	if h.queue == nil {
		middleware.HandleError(resp, errors.New("async queries are disabled"), http.StatusNotImplemented)
		return
	}

	var queryRequest QueryRequest
	if err := req.ReadEntity(&queryRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	job, err := h.queue.Enqueue(req.Request.Context(), batch.QueryRequest{
		Question:              queryRequest.Question,
		Collections:           queryRequest.Collections,
		Strategy:              queryRequest.Strategy,
		MaxGenerationAttempts: queryRequest.MaxGenerationAttempts,
		MaxTransformAttempts:  queryRequest.MaxTransformAttempts,
		Temperature:           queryRequest.Temperature,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to enqueue job")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().Str("job_id", job.ID).Msg("Job accepted")
	resp.WriteHeaderAndEntity(http.StatusAccepted, job)
}

// GET /api/v1/jobs/{job_id}
func (h *Handler) GetJob(req *restful.Request, resp *restful.Response) {
	if h.queue == nil {
		middleware.HandleError(resp, errors.New("async queries are disabled"), http.StatusNotImplemented)
		return
	}

	jobID := req.PathParameter("job_id")
	job, err := h.queue.Get(req.Request.Context(), jobID)
	if errors.Is(err, jobs.ErrNotFound) {
		middleware.HandleError(resp, err, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to load job")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, job)
}

// GET /api/v1/collections
func (h *Handler) Collections(req *restful.Request, resp *restful.Response) {
	collections, err := h.collections.GetCollections(req.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list collections")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, CollectionsResponse{Collections: collections})
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}

func (h *Handler) writeRunError(resp *restful.Response, err error) {
	switch {
	case errors.Is(err, pipeline.ErrEmptyQuestion), errors.Is(err, pipeline.ErrUnknownStrategy):
		middleware.HandleError(resp, err, http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrUnknownCollection):
		middleware.HandleError(resp, err, http.StatusNotFound)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
		h.logger.Warn().Msg("Query cancelled by client")
		middleware.HandleError(resp, err, http.StatusServiceUnavailable)
	default:
		h.logger.Error().Err(err).Msg("Query failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
	}
}
