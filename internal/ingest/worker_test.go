package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/unwindhq/unwind/internal/content"
	"github.com/unwindhq/unwind/internal/storage"
)

// mockJobStore is an in-memory JobStore recording worker interactions.
type mockJobStore struct {
	jobs      []*storage.Job
	saved     []content.Item
	completed []string
	failed    map[string]string
	saveErr   error
}

func newMockJobStore() *mockJobStore {
	return &mockJobStore{failed: map[string]string{}}
}

func (m *mockJobStore) ClaimNextJob(types []string) (*storage.Job, error) {
	if len(m.jobs) == 0 {
		return nil, nil
	}
	job := m.jobs[0]
	m.jobs = m.jobs[1:]
	return job, nil
}

func (m *mockJobStore) CompleteJob(id string) error {
	m.completed = append(m.completed, id)
	return nil
}

func (m *mockJobStore) FailJob(id string, errMsg string) error {
	m.failed[id] = errMsg
	return nil
}

func (m *mockJobStore) SaveItem(item content.Item) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, item)
	return nil
}

func batchJob(t *testing.T, id, provider string, records []content.RawRecord) *storage.Job {
	t.Helper()
	payload, err := json.Marshal(BatchPayload{Provider: provider, Records: records})
	if err != nil {
		t.Fatal(err)
	}
	return &storage.Job{ID: id, Type: JobType, PayloadJSON: string(payload)}
}

func TestRunOnceEmptyQueue(t *testing.T) {
	w := NewWorker(newMockJobStore(), content.NewNormalizer(), 0)

	done, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if done {
		t.Error("RunOnce reported work on an empty queue")
	}
}

func TestRunOnceProcessesBatch(t *testing.T) {
	store := newMockJobStore()
	store.jobs = append(store.jobs, batchJob(t, "job-1", "movie", []content.RawRecord{
		{ID: "603", Title: "The Matrix", ReleaseDate: "1999-03-31", Genres: []string{"Action"}},
		{ID: "604", Title: "The Matrix Reloaded", ReleaseDate: "2003-05-15", Genres: []string{"Action"}},
	}))

	w := NewWorker(store, content.NewNormalizer(), 0)
	done, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !done {
		t.Error("RunOnce did not report work done")
	}
	if len(store.saved) != 2 {
		t.Fatalf("saved %d items, want 2", len(store.saved))
	}
	if store.saved[0].ID != "movie:603" {
		t.Errorf("saved[0].ID = %q", store.saved[0].ID)
	}
	if len(store.completed) != 1 || store.completed[0] != "job-1" {
		t.Errorf("completed = %v, want [job-1]", store.completed)
	}
	if len(store.failed) != 0 {
		t.Errorf("failed = %v, want none", store.failed)
	}
}

func TestRunOnceSkipsRecordsWithoutIdentifier(t *testing.T) {
	store := newMockJobStore()
	store.jobs = append(store.jobs, batchJob(t, "job-1", "movie", []content.RawRecord{
		{Overview: "no id, no title"},
		{ID: "603", Title: "The Matrix", ReleaseDate: "1999-03-31"},
	}))

	w := NewWorker(store, content.NewNormalizer(), 0)
	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	// Unidentifiable records are dropped, the rest of the batch survives.
	if len(store.saved) != 1 || store.saved[0].ID != "movie:603" {
		t.Errorf("saved = %+v, want just movie:603", store.saved)
	}
	if len(store.completed) != 1 {
		t.Errorf("completed = %v, batch should still complete", store.completed)
	}
}

func TestRunOnceFailsJobOnBadPayload(t *testing.T) {
	store := newMockJobStore()
	store.jobs = append(store.jobs, &storage.Job{ID: "job-1", Type: JobType, PayloadJSON: "not json"})

	w := NewWorker(store, content.NewNormalizer(), 0)
	done, err := w.RunOnce(context.Background())
	if err == nil {
		t.Error("expected error for malformed payload")
	}
	if !done {
		t.Error("a claimed job counts as work even when it fails")
	}
	if _, ok := store.failed["job-1"]; !ok {
		t.Errorf("failed = %v, job not marked failed", store.failed)
	}
	if len(store.completed) != 0 {
		t.Errorf("completed = %v, want none", store.completed)
	}
}

func TestRunOnceFailsJobOnMissingProvider(t *testing.T) {
	store := newMockJobStore()
	store.jobs = append(store.jobs, batchJob(t, "job-1", "", []content.RawRecord{{ID: "1", Title: "x"}}))

	w := NewWorker(store, content.NewNormalizer(), 0)
	if _, err := w.RunOnce(context.Background()); err == nil {
		t.Error("expected error for payload without provider")
	}
	if _, ok := store.failed["job-1"]; !ok {
		t.Error("job not marked failed")
	}
}

func TestRunOnceFailsJobOnSaveError(t *testing.T) {
	store := newMockJobStore()
	store.saveErr = fmt.Errorf("disk full")
	store.jobs = append(store.jobs, batchJob(t, "job-1", "movie", []content.RawRecord{
		{ID: "603", Title: "The Matrix", ReleaseDate: "1999-03-31"},
	}))

	w := NewWorker(store, content.NewNormalizer(), 0)
	if _, err := w.RunOnce(context.Background()); err == nil {
		t.Error("expected save error to fail the job")
	}
	if store.failed["job-1"] == "" {
		t.Error("job not marked failed with the save error")
	}
}

func TestRunExitsOnContextCancel(t *testing.T) {
	w := NewWorker(newMockJobStore(), content.NewNormalizer(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	<-done
}
