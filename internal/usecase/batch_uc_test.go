//go:build !integration

// File: internal/usecase/batch_uc_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
	"blogforge/internal/infra/memstore"
	"blogforge/internal/placement"
	"blogforge/internal/seo"
)

type batchHarness struct {
	uc       *batchUC
	jobs     *memstore.BatchJobRepo
	keywords *memstore.KeywordSetRepo
	articles *memstore.ArticleRepo
	gen      *fakeGenerator
	notifier *fakeNotifier
}

func newBatchHarness(t *testing.T) *batchHarness {
	t.Helper()
	log := zerolog.Nop()
	h := &batchHarness{
		jobs:     memstore.NewBatchJobRepo(),
		keywords: memstore.NewKeywordSetRepo(),
		articles: memstore.NewArticleRepo(),
		gen:      &fakeGenerator{},
		notifier: &fakeNotifier{},
	}
	research := memstore.NewResearchRepo()
	images := memstore.NewImageRepo()
	store := memstore.NewSessionStore()
	tx := memstore.NewTxManager()
	vars := NewPromptVars("welding", "Acme Welding", "+1 555 0100", "https://acme.example.com/")
	pk := seo.ProductKnowledge{Company: "Acme Welding"}

	keywordUC := NewKeywordUseCase(h.keywords, &log)
	researchUC := NewResearchUseCase(h.keywords, research,
		[]adapter.ResearchProvider{&fakeResearchProvider{Snippets: someSnippets()}}, 10, "Acme Welding", &log)
	imageUC := NewImageUseCase(h.keywords, images, h.articles,
		[]adapter.ImageProvider{&fakeImageProvider{Images: someImages()}}, placement.New(&log), 8, &log)
	sessionUC := NewSessionUseCase(store, h.keywords, research, h.articles, tx, h.gen,
		"fake-model", 2*time.Hour, vars, pk, &log)
	metadataUC := NewMetadataUseCase(h.keywords, h.articles, h.gen, "fake-model", vars, pk, &log)

	h.uc = NewBatchUseCase(h.jobs, keywordUC, researchUC, imageUC, sessionUC, metadataUC,
		h.notifier, time.Millisecond, time.Millisecond, &log)
	h.uc.sleep = func(ctx context.Context, d time.Duration) {}
	return h
}

func (h *batchHarness) waitTerminal(t *testing.T, jobID string) *model.BatchJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := h.jobs.FindByID(context.Background(), nil, jobID)
		if err == nil && job.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal status")
	return nil
}

func goodRow(main string) model.BatchRow {
	return model.BatchRow{
		MainKeyword: main,
		Subsidiary:  []string{"wire feed", "duty cycle", "shielding gas", "amperage"},
	}
}

func TestBatchStart(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty submission", func(t *testing.T) {
		h := newBatchHarness(t)
		if _, err := h.uc.Start(ctx, nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("err = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("queued job is durable before the worker runs", func(t *testing.T) {
		h := newBatchHarness(t)
		job, err := h.uc.Start(ctx, []model.BatchRow{goodRow("mig welder")})
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := h.jobs.FindByID(ctx, nil, job.ID); err != nil {
			t.Fatalf("job not persisted at accept time: %v", err)
		}
		h.waitTerminal(t, job.ID)
	})

	t.Run("durable save failure rejects the batch", func(t *testing.T) {
		h := newBatchHarness(t)
		h.jobs.SaveErr = errors.New("db down")
		if _, err := h.uc.Start(ctx, []model.BatchRow{goodRow("mig welder")}); err == nil {
			t.Fatal("expected error when the job cannot be persisted")
		}
	})
}

func TestBatchMixedOutcome(t *testing.T) {
	ctx := context.Background()
	h := newBatchHarness(t)

	rows := []model.BatchRow{
		goodRow("mig welder"),
		{MainKeyword: "tig welder", Subsidiary: []string{"only", "three", "keywords"}},
		goodRow("plasma cutter"),
	}
	job, err := h.uc.Start(ctx, rows)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	done := h.waitTerminal(t, job.ID)

	if done.Status != model.BatchCompletedWithErrors {
		t.Errorf("status = %s, want %s", done.Status, model.BatchCompletedWithErrors)
	}
	if done.Processed != 2 || done.Failed != 1 {
		t.Errorf("processed/failed = %d/%d, want 2/1", done.Processed, done.Failed)
	}
	if done.Progress != 66.67 {
		t.Errorf("progress = %v, want 66.67", done.Progress)
	}
	if done.CompletedAt == nil {
		t.Error("terminal job missing completion time")
	}
	if len(done.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(done.Results))
	}
	if done.Results[1].Status != "failed" || !strings.Contains(done.Results[1].Error, "insufficient keywords") {
		t.Errorf("row 2 result = %+v, want validation failure", done.Results[1])
	}
	for i, res := range done.Results {
		if res.Timestamp.IsZero() {
			t.Errorf("row %d result has no timestamp", i+1)
		}
	}
	for _, i := range []int{0, 2} {
		r := done.Results[i]
		if r.Status != "success" {
			t.Errorf("row %d status = %s: %s", r.Row, r.Status, r.Error)
		}
		if r.ArticleID == "" || r.KeywordSetID == "" {
			t.Errorf("row %d missing ids: %+v", r.Row, r)
		}
	}

	// the invalid row must not have registered a keyword set
	sets, _ := h.keywords.FindAll(ctx, nil, 50)
	if len(sets) != 2 {
		t.Errorf("keyword sets = %d, want 2", len(sets))
	}
	for _, ks := range sets {
		if ks.Status != model.StatusReadyToPublish {
			t.Errorf("set %q status = %s, want %s", ks.MainKeyword, ks.Status, model.StatusReadyToPublish)
		}
	}

	// surviving rows produced publish-ready articles with images
	for _, i := range []int{0, 2} {
		a, err := h.articles.FindByID(ctx, nil, done.Results[i].ArticleID)
		if err != nil {
			t.Fatalf("article for row %d: %v", i+1, err)
		}
		if a.PublishReadyHTML == "" {
			t.Errorf("row %d article has no publish rendition", i+1)
		}
		if !strings.Contains(a.WithImagesHTML, "img.example.com") {
			t.Errorf("row %d article has no placed images", i+1)
		}
	}

	if msgs := h.notifier.sent(); len(msgs) != 1 || !strings.Contains(msgs[0], job.ID) {
		t.Errorf("notification = %v", msgs)
	}
}

func TestBatchAllSucceed(t *testing.T) {
	h := newBatchHarness(t)
	job, err := h.uc.Start(context.Background(), []model.BatchRow{goodRow("mig welder"), goodRow("stick welder")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	done := h.waitTerminal(t, job.ID)
	if done.Status != model.BatchCompletedOK {
		t.Errorf("status = %s, want %s", done.Status, model.BatchCompletedOK)
	}
	if done.Progress != 100 {
		t.Errorf("progress = %v, want 100", done.Progress)
	}
}

func TestBatchImageFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	h := newBatchHarness(t)

	// rebuild the image usecase around a dead provider
	log := zerolog.Nop()
	h.uc.images = NewImageUseCase(h.keywords, memstore.NewImageRepo(), h.articles,
		[]adapter.ImageProvider{&fakeImageProvider{Err: errors.New("blocked")}}, placement.New(&log), 8, &log)

	job, err := h.uc.Start(ctx, []model.BatchRow{goodRow("mig welder")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	done := h.waitTerminal(t, job.ID)
	if done.Status != model.BatchCompletedOK {
		t.Errorf("status = %s, want %s", done.Status, model.BatchCompletedOK)
	}
	if done.Processed != 1 {
		t.Errorf("processed = %d, want 1", done.Processed)
	}
	a, err := h.articles.FindByID(ctx, nil, done.Results[0].ArticleID)
	if err != nil {
		t.Fatalf("article: %v", err)
	}
	if a.WithImagesHTML != "" {
		t.Error("article should have no image rendition when search failed")
	}
	if a.PublishReadyHTML == "" {
		t.Error("publish rendition should still exist")
	}
}

func TestBatchGenerationFailureIsFatalForRow(t *testing.T) {
	h := newBatchHarness(t)
	h.gen.GenerateFn = func(ctx context.Context, model, prompt string) (string, error) {
		return "", errors.New("quota exceeded")
	}
	job, err := h.uc.Start(context.Background(), []model.BatchRow{goodRow("mig welder")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	done := h.waitTerminal(t, job.ID)
	if done.Status != model.BatchCompletedWithErrors {
		t.Errorf("status = %s, want %s", done.Status, model.BatchCompletedWithErrors)
	}
	if done.Results[0].Status != "failed" || !strings.Contains(done.Results[0].Error, "quota exceeded") {
		t.Errorf("result = %+v", done.Results[0])
	}
}

func TestBatchWorkerPanicMarksJobFailed(t *testing.T) {
	h := newBatchHarness(t)
	h.gen.GenerateFn = func(ctx context.Context, model, prompt string) (string, error) {
		panic("boom")
	}

	ctx := context.Background()
	job := model.NewBatchJob("01TESTPANIC", 1)
	if err := h.jobs.Save(ctx, nil, job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	h.uc.run(ctx, job, []model.BatchRow{goodRow("mig welder")})

	if job.Status != model.BatchFailed {
		t.Errorf("status = %s, want %s", job.Status, model.BatchFailed)
	}
	if !strings.Contains(job.Stage, "boom") {
		t.Errorf("stage = %q, want the panic value", job.Stage)
	}
}

func TestBatchPersistenceErrorsAreSwallowed(t *testing.T) {
	h := newBatchHarness(t)

	ctx := context.Background()
	job := model.NewBatchJob("01TESTPERSIST", 1)
	if err := h.jobs.Save(ctx, nil, job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	// every progress write fails; the run must still reach a terminal state
	h.jobs.SaveErr = errors.New("redis down")
	h.uc.run(ctx, job, []model.BatchRow{goodRow("mig welder")})

	if job.Status != model.BatchCompletedOK {
		t.Errorf("status = %s, want %s", job.Status, model.BatchCompletedOK)
	}
	if job.Processed != 1 {
		t.Errorf("processed = %d, want 1", job.Processed)
	}
	if msgs := h.notifier.sent(); len(msgs) != 1 {
		t.Errorf("notifications = %d, want 1", len(msgs))
	}
}
