//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
	"blogforge/internal/infra/adapters/ai"
	"blogforge/internal/infra/memstore"
	"blogforge/internal/placement"
	"blogforge/internal/seo"
	"blogforge/internal/usecase"
)

type fakeResearchProvider struct{}

func (fakeResearchProvider) Search(_ context.Context, keyword string, limit int) ([]model.ResearchSnippet, error) {
	out := make([]model.ResearchSnippet, 0, limit)
	for i := 0; i < limit && i < 3; i++ {
		out = append(out, model.ResearchSnippet{
			Title:   fmt.Sprintf("%s result %d", keyword, i+1),
			URL:     fmt.Sprintf("https://example.com/%d", i+1),
			Snippet: fmt.Sprintf("Everything about %s, part %d.", keyword, i+1),
			Source:  "Test",
		})
	}
	return out, nil
}

type fakeImageProvider struct{}

func (fakeImageProvider) Search(_ context.Context, keyword string, limit int) ([]model.ImageCandidate, error) {
	out := make([]model.ImageCandidate, 0, limit)
	for i := 0; i < limit && i < 5; i++ {
		out = append(out, model.ImageCandidate{
			URL: fmt.Sprintf("https://img.example.com/%d.jpg", i+1),
			Alt: fmt.Sprintf("%s image %d", keyword, i+1),
		})
	}
	return out, nil
}

type fakeNotifier struct{}

func (fakeNotifier) Notify(context.Context, string) error { return nil }

func newTestHandler(t *testing.T, adminPassword string) http.Handler {
	t.Helper()
	log := zerolog.Nop()

	keywordRepo := memstore.NewKeywordSetRepo()
	researchRepo := memstore.NewResearchRepo()
	imageRepo := memstore.NewImageRepo()
	articleRepo := memstore.NewArticleRepo()
	jobRepo := memstore.NewBatchJobRepo()
	sessionStore := memstore.NewSessionStore()
	tx := memstore.NewTxManager()

	gen := ai.NewNoopGenerator()
	vars := usecase.NewPromptVars("welding", "Acme Welding", "+1 555 0100", "https://acme.example.com/")
	pk := seo.ProductKnowledge{Company: "Acme Welding", BaseURL: "https://acme.example.com/", Phone: "+1 555 0100"}

	keywords := usecase.NewKeywordUseCase(keywordRepo, &log)
	research := usecase.NewResearchUseCase(
		keywordRepo, researchRepo,
		[]adapter.ResearchProvider{fakeResearchProvider{}},
		10, "Acme Welding", &log,
	)
	images := usecase.NewImageUseCase(
		keywordRepo, imageRepo, articleRepo,
		[]adapter.ImageProvider{fakeImageProvider{}},
		placement.New(&log), 4, &log,
	)
	sessions := usecase.NewSessionUseCase(
		sessionStore, keywordRepo, researchRepo, articleRepo, tx,
		gen, "noop", 2*time.Hour, vars, pk, &log,
	)
	metadata := usecase.NewMetadataUseCase(keywordRepo, articleRepo, gen, "noop", vars, pk, &log)
	batches := usecase.NewBatchUseCase(
		jobRepo, keywords, research, images, sessions, metadata,
		fakeNotifier{}, time.Millisecond, time.Millisecond, &log,
	)

	auth := NewAuthManager("test-secret", false, "", time.Hour)
	srv := NewServer(keywords, research, images, sessions, metadata, batches, articleRepo, auth, adminPassword, &log)
	return srv.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createKeywordSet(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords", map[string]any{
		"main_keyword":        "mig welder",
		"subsidiary_keywords": []string{"mig welding wire", "welding helmet", "gas regulator", "welding gloves"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create keyword set: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &out)
	if out.ID == "" {
		t.Fatal("create keyword set: empty id")
	}
	return out.ID
}

func TestKeywordEndpoints(t *testing.T) {
	h := newTestHandler(t, "")

	t.Run("create and fetch", func(t *testing.T) {
		id := createKeywordSet(t, h)

		rec := doJSON(t, h, http.MethodGet, "/api/v1/keywords/"+id, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get: status = %d", rec.Code)
		}
		var got struct {
			MainKeyword string `json:"main_keyword"`
			Status      string `json:"status"`
		}
		decodeBody(t, rec, &got)
		if got.MainKeyword != "mig welder" {
			t.Errorf("main_keyword = %q", got.MainKeyword)
		}
		if got.Status != string(model.StatusCreated) {
			t.Errorf("status = %q, want created", got.Status)
		}

		rec = doJSON(t, h, http.MethodGet, "/api/v1/keywords/", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list: status = %d", rec.Code)
		}
		var list []json.RawMessage
		decodeBody(t, rec, &list)
		if len(list) != 1 {
			t.Errorf("list length = %d, want 1", len(list))
		}
	})

	t.Run("invalid body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/keywords", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("too few subsidiary keywords", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords", map[string]any{
			"main_keyword":        "tig welder",
			"subsidiary_keywords": []string{"only", "three", "given"},
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("delete", func(t *testing.T) {
		id := createKeywordSet(t, h)
		rec := doJSON(t, h, http.MethodDelete, "/api/v1/keywords/"+id, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("delete: status = %d", rec.Code)
		}
		rec = doJSON(t, h, http.MethodGet, "/api/v1/keywords/"+id, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("get after delete: status = %d, want 404", rec.Code)
		}
	})
}

func TestBlogSessionEndpoints(t *testing.T) {
	h := newTestHandler(t, "")
	id := createKeywordSet(t, h)

	t.Run("start requires research", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/blog/start", nil)
		if rec.Code != http.StatusPreconditionFailed {
			t.Fatalf("status = %d, want 412, body %s", rec.Code, rec.Body.String())
		}
		var out struct {
			Missing string `json:"missing"`
		}
		decodeBody(t, rec, &out)
		if out.Missing == "" {
			t.Error("missing field not populated")
		}
	})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/research", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("research: status = %d, body %s", rec.Code, rec.Body.String())
	}

	t.Run("start then step in order", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/blog/start", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("start: status = %d, body %s", rec.Code, rec.Body.String())
		}
		var sess struct {
			StepName string `json:"step_name"`
		}
		decodeBody(t, rec, &sess)
		if sess.StepName != "title_tag" {
			t.Errorf("step_name = %q, want title_tag", sess.StepName)
		}

		rec = doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/blog/step", map[string]string{"step": "h1_heading"})
		if rec.Code != http.StatusPreconditionFailed {
			t.Errorf("out-of-order step: status = %d, want 412", rec.Code)
		}

		rec = doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/blog/step", map[string]string{"step": "title_tag"})
		if rec.Code != http.StatusOK {
			t.Fatalf("title_tag step: status = %d, body %s", rec.Code, rec.Body.String())
		}
		var step struct {
			Step     string `json:"step"`
			NextName string `json:"next_step_name"`
			Content  string `json:"content"`
		}
		decodeBody(t, rec, &step)
		if step.Step != "title_tag" || step.NextName != "h1_heading" {
			t.Errorf("step = %q next = %q", step.Step, step.NextName)
		}
		if step.Content == "" {
			t.Error("no content returned for title_tag")
		}

		rec = doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/blog/step", map[string]string{"step": "title_tag"})
		if rec.Code != http.StatusConflict {
			t.Errorf("repeated step: status = %d, want 409", rec.Code)
		}

		rec = doJSON(t, h, http.MethodGet, "/api/v1/keywords/"+id+"/blog/session", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("session: status = %d", rec.Code)
		}
		var cur struct {
			StepName string `json:"step_name"`
		}
		decodeBody(t, rec, &cur)
		if cur.StepName != "h1_heading" {
			t.Errorf("session step_name = %q, want h1_heading", cur.StepName)
		}
	})

	t.Run("unknown step", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/blog/step", map[string]string{"step": "outline"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("session for unknown keyword set", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/keywords/01NOPE/blog/session", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestFullPipelineOverHTTP(t *testing.T) {
	h := newTestHandler(t, "")
	id := createKeywordSet(t, h)

	if rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/research", nil); rec.Code != http.StatusOK {
		t.Fatalf("research: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/blog/start", nil); rec.Code != http.StatusOK {
		t.Fatalf("start: status = %d", rec.Code)
	}
	for _, step := range []string{
		"title_tag", "h1_heading", "opening_paragraph", "subheadings",
		"content_sections", "cta", "conclusion", "quality_check", "finalize",
	} {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/blog/step", map[string]string{"step": step})
		if rec.Code != http.StatusOK {
			t.Fatalf("step %s: status = %d, body %s", step, rec.Code, rec.Body.String())
		}
	}

	if rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/images", nil); rec.Code != http.StatusOK {
		t.Fatalf("image fetch: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/images/integrate", nil); rec.Code != http.StatusOK {
		t.Fatalf("integrate: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/keywords/"+id+"/metadata", nil); rec.Code != http.StatusOK {
		t.Fatalf("metadata: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, h, http.MethodGet, "/api/v1/keywords/"+id+"/blog/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var sum struct {
		Status       string `json:"status"`
		WordCount    int    `json:"word_count"`
		HasImages    bool   `json:"has_images"`
		PublishReady bool   `json:"publish_ready"`
	}
	decodeBody(t, rec, &sum)
	if sum.Status != string(model.StatusReadyToPublish) {
		t.Errorf("status = %q, want ready_to_publish", sum.Status)
	}
	if sum.WordCount == 0 {
		t.Error("word_count = 0")
	}
	if !sum.HasImages || !sum.PublishReady {
		t.Errorf("has_images = %v publish_ready = %v", sum.HasImages, sum.PublishReady)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/keywords/"+id+"/blog/download", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download: status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Error("no content-disposition header")
	}
	if rec.Body.Len() == 0 {
		t.Error("empty download body")
	}
}

func TestBatchEndpoints(t *testing.T) {
	h := newTestHandler(t, "")

	t.Run("empty submission", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/batches", map[string]any{"rows": []any{}})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("submit and poll", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/batches", map[string]any{
			"rows": []map[string]any{{
				"main_keyword":        "stick welder",
				"subsidiary_keywords": []string{"welding rod", "chipping hammer", "ground clamp", "arc shield"},
			}},
		})
		if rec.Code != http.StatusAccepted {
			t.Fatalf("submit: status = %d, body %s", rec.Code, rec.Body.String())
		}
		var job struct {
			ID string `json:"id"`
		}
		decodeBody(t, rec, &job)
		if job.ID == "" {
			t.Fatal("submit: empty job id")
		}

		deadline := time.Now().Add(5 * time.Second)
		var status struct {
			Status   string  `json:"status"`
			Progress float64 `json:"progress"`
		}
		for {
			rec = doJSON(t, h, http.MethodGet, "/api/v1/batches/"+job.ID+"/status", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status: status = %d", rec.Code)
			}
			decodeBody(t, rec, &status)
			if status.Status == string(model.BatchCompletedOK) ||
				status.Status == string(model.BatchCompletedWithErrors) ||
				status.Status == string(model.BatchFailed) {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("job still %q after deadline", status.Status)
			}
			time.Sleep(20 * time.Millisecond)
		}
		if status.Status != string(model.BatchCompletedOK) {
			t.Errorf("terminal status = %q, want completed_successfully", status.Status)
		}
		if status.Progress != 100 {
			t.Errorf("progress = %v, want 100", status.Progress)
		}

		rec = doJSON(t, h, http.MethodGet, "/api/v1/batches/"+job.ID+"/results", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("results: status = %d", rec.Code)
		}
		var results []struct {
			MainKeyword string `json:"main_keyword"`
			Status      string `json:"status"`
		}
		decodeBody(t, rec, &results)
		if len(results) != 1 || results[0].Status != "completed" {
			t.Errorf("results = %+v", results)
		}

		rec = doJSON(t, h, http.MethodGet, "/api/v1/batches/", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list: status = %d", rec.Code)
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/batches/01NOPE/status", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestAdminAuth(t *testing.T) {
	h := newTestHandler(t, "s3cret")

	t.Run("protected without token", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/keywords/", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": "nope"})
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("login and use bearer token", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": "s3cret"})
		if rec.Code != http.StatusOK {
			t.Fatalf("login: status = %d", rec.Code)
		}
		var out struct {
			Token string `json:"token"`
		}
		decodeBody(t, rec, &out)
		if out.Token == "" {
			t.Fatal("login: empty token")
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/keywords/", nil)
		req.Header.Set("Authorization", "Bearer "+out.Token)
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Errorf("with token: status = %d, want 200", resp.Code)
		}
	})

	t.Run("health and metrics stay open", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("healthz: status = %d", rec.Code)
		}
	})
}
