package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/batch"
	"github.com/davisjr/adaptive-rag/internal/models"
)

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewStore(client, "queries", time.Hour, nopLogger())
}

func TestStore_EnqueueAndGet(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, batch.QueryRequest{Question: "what is pgvector?"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job id must be set")
	}
	if job.Status != StatusQueued {
		t.Errorf("status = %s, want queued", job.Status)
	}

	loaded, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.Request.Question != "what is pgvector?" {
		t.Errorf("question = %q", loaded.Request.Question)
	}

	// The job must also land on the work stream.
	if mr.Exists("queries") != true {
		t.Error("work stream was not written")
	}
}

func TestStore_Lifecycle(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, batch.QueryRequest{Question: "q"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if err := store.MarkRunning(ctx, job.ID); err != nil {
		t.Fatalf("mark running failed: %v", err)
	}
	loaded, _ := store.Get(ctx, job.ID)
	if loaded.Status != StatusRunning {
		t.Errorf("status = %s, want running", loaded.Status)
	}

	result := &models.RunResult{Answer: "an answer"}
	if err := store.Complete(ctx, job.ID, result); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	loaded, _ = store.Get(ctx, job.ID)
	if loaded.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", loaded.Status)
	}
	if loaded.Result == nil || loaded.Result.Answer != "an answer" {
		t.Errorf("result = %+v", loaded.Result)
	}
	if loaded.FinishedAt == nil {
		t.Error("finished_at must be set")
	}
}

func TestStore_Fail(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	job, _ := store.Enqueue(ctx, batch.QueryRequest{Question: "q"})
	if err := store.Fail(ctx, job.ID, "unknown collection: nope"); err != nil {
		t.Fatalf("fail failed: %v", err)
	}

	loaded, _ := store.Get(ctx, job.ID)
	if loaded.Status != StatusFailed {
		t.Errorf("status = %s, want failed", loaded.Status)
	}
	if loaded.Error != "unknown collection: nope" {
		t.Errorf("error = %q", loaded.Error)
	}
}

func TestStore_GetUnknownJob(t *testing.T) {
	_, store := newTestStore(t)

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_RecordsExpire(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	job, _ := store.Enqueue(ctx, batch.QueryRequest{Question: "q"})
	mr.FastForward(2 * time.Hour)

	if _, err := store.Get(ctx, job.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after TTL", err)
	}
}

func TestConnect_NonPositiveRetriesStillAttemptsOnce(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := Connect(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("ping failed: %v", err)
	}
}
