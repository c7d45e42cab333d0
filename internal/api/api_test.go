package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/api"
	"github.com/davisjr/adaptive-rag/internal/api/middleware"
	"github.com/davisjr/adaptive-rag/internal/batch"
	"github.com/davisjr/adaptive-rag/internal/jobs"
	"github.com/davisjr/adaptive-rag/internal/models"
	"github.com/davisjr/adaptive-rag/internal/pipeline"
)

type stubRunner struct {
	result *models.RunResult
	err    error

	strategy models.Strategy
	question string
	limits   pipeline.Limits
}

func (r *stubRunner) Run(_ context.Context, strategy models.Strategy, question string, _ []string, limits pipeline.Limits) (*models.RunResult, error) {
	r.strategy = strategy
	r.question = question
	r.limits = limits
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

type stubLister struct {
	collections []models.Collection
	err         error
}

func (l *stubLister) GetCollections(_ context.Context) ([]models.Collection, error) {
	return l.collections, l.err
}

type stubQueue struct {
	jobs map[string]*jobs.Job
}

func (q *stubQueue) Enqueue(_ context.Context, request batch.QueryRequest) (*jobs.Job, error) {
	job := &jobs.Job{ID: "job-1", Status: jobs.StatusQueued, Request: request}
	q.jobs[job.ID] = job
	return job, nil
}

func (q *stubQueue) Get(_ context.Context, jobID string) (*jobs.Job, error) {
	job, ok := q.jobs[jobID]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	return job, nil
}

func setupTestAPI(runner *stubRunner, lister *stubLister, queue api.JobQueue) *restful.Container {
	logger := zerolog.Nop()
	handler := api.NewHandler(runner, lister, queue, &logger)
	container := restful.NewContainer()
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)
	return container
}

func postJSON(t *testing.T, container *restful.Container, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func TestAPI_Health(t *testing.T) {
	container := setupTestAPI(&stubRunner{}, &stubLister{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", recorder.Code)
	}

	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response.Status)
	}
}

func TestAPI_Query(t *testing.T) {
	runner := &stubRunner{result: &models.RunResult{
		RunID:  "run-1",
		Answer: "use pgvector",
		Metrics: models.IterationMetrics{
			GenerationAttempts: 1,
		},
	}}
	container := setupTestAPI(runner, &stubLister{}, nil)

	recorder := postJSON(t, container, "/api/v1/query", api.QueryRequest{
		Question:    "how do I store embeddings?",
		Collections: []string{"stackoverflow"},
		Strategy:    models.StrategyAdaptive,
		Temperature: 0.3,
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var result models.RunResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Answer != "use pgvector" {
		t.Errorf("answer = %q", result.Answer)
	}
	if runner.question != "how do I store embeddings?" {
		t.Errorf("runner saw question %q", runner.question)
	}
	if runner.strategy != models.StrategyAdaptive {
		t.Errorf("runner saw strategy %q", runner.strategy)
	}
	if runner.limits.Temperature != 0.3 {
		t.Errorf("runner saw temperature %v, want 0.3", runner.limits.Temperature)
	}
}

func TestAPI_Query_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty question", pipeline.ErrEmptyQuestion, http.StatusBadRequest},
		{"unknown strategy", pipeline.ErrUnknownStrategy, http.StatusBadRequest},
		{"unknown collection", pipeline.ErrUnknownCollection, http.StatusNotFound},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			container := setupTestAPI(&stubRunner{err: tc.err}, &stubLister{}, nil)
			recorder := postJSON(t, container, "/api/v1/query", api.QueryRequest{Question: "q"})

			if recorder.Code != tc.want {
				t.Errorf("Expected status %d, got %d", tc.want, recorder.Code)
			}
			var errResponse middleware.ErrorResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &errResponse); err != nil {
				t.Fatalf("Failed to parse error response: %v", err)
			}
			if errResponse.Status != tc.want {
				t.Errorf("body status = %d, want %d", errResponse.Status, tc.want)
			}
		})
	}
}

func TestAPI_Collections(t *testing.T) {
	lister := &stubLister{collections: []models.Collection{
		{ID: "stackoverflow", Name: "Stack Overflow", Source: models.SourceStackOverflow, ChunkCount: 1200},
		{ID: "pdf", Name: "PDF Library", Source: models.SourcePDF, ChunkCount: 300},
	}}
	container := setupTestAPI(&stubRunner{}, lister, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	var response api.CollectionsResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(response.Collections) != 2 {
		t.Errorf("collections = %d, want 2", len(response.Collections))
	}
}

func TestAPI_AsyncLifecycle(t *testing.T) {
	queue := &stubQueue{jobs: map[string]*jobs.Job{}}
	container := setupTestAPI(&stubRunner{}, &stubLister{}, queue)

	recorder := postJSON(t, container, "/api/v1/query/async", api.QueryRequest{Question: "q"})
	if recorder.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var job jobs.Job
	if err := json.Unmarshal(recorder.Body.Bytes(), &job); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if job.Status != jobs.StatusQueued {
		t.Errorf("status = %s, want queued", job.Status)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
	getRecorder := httptest.NewRecorder()
	container.ServeHTTP(getRecorder, req)
	if getRecorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", getRecorder.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil)
	missingRecorder := httptest.NewRecorder()
	container.ServeHTTP(missingRecorder, req)
	if missingRecorder.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", missingRecorder.Code)
	}
}

func TestAPI_AsyncDisabled(t *testing.T) {
	container := setupTestAPI(&stubRunner{}, &stubLister{}, nil)

	recorder := postJSON(t, container, "/api/v1/query/async", api.QueryRequest{Question: "q"})
	if recorder.Code != http.StatusNotImplemented {
		t.Errorf("Expected status 501, got %d", recorder.Code)
	}
}
