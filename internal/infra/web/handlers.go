package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/repository"
	"blogforge/internal/usecase"
)

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Precondition failures
// carry the missing prerequisite so the dashboard can point at it.
func writeError(w http.ResponseWriter, err error) {
	var pre *domain.PreconditionError
	if errors.As(err, &pre) {
		writeJSON(w, http.StatusPreconditionFailed, map[string]string{
			"error":   pre.Error(),
			"missing": pre.Missing,
		})
		return
	}
	var up *domain.UpstreamError
	if errors.As(err, &up) {
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": up.Error(),
			"stage": up.Stage,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSessionExpired):
		status = http.StatusGone
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// ===== keywords =====

type keywordCreateRequest struct {
	MainKeyword string   `json:"main_keyword"`
	Subsidiary  []string `json:"subsidiary_keywords"`
}

func keywordCreateHandler(uc usecase.KeywordUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req keywordCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		ks, err := uc.Create(r.Context(), req.MainKeyword, req.Subsidiary)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, keywordView(ks))
	}
}

func keywordListHandler(uc usecase.KeywordUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		sets, err := uc.List(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]map[string]any, 0, len(sets))
		for _, ks := range sets {
			out = append(out, keywordView(ks))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func keywordGetHandler(uc usecase.KeywordUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ks, err := uc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, keywordView(ks))
	}
}

func keywordDeleteHandler(uc usecase.KeywordUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func keywordView(ks *model.KeywordSet) map[string]any {
	return map[string]any{
		"id":                  ks.ID,
		"main_keyword":        ks.MainKeyword,
		"subsidiary_keywords": ks.Subsidiary,
		"status":              ks.Status,
		"created_at":          ks.CreatedAt,
		"updated_at":          ks.UpdatedAt,
	}
}

// ===== research =====

func researchRunHandler(uc usecase.ResearchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd, err := uc.Run(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rd)
	}
}

func researchGetHandler(uc usecase.ResearchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd, err := uc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rd)
	}
}

// ===== images =====

func imageFetchHandler(uc usecase.ImageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ib, err := uc.Fetch(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ib)
	}
}

func imageGetHandler(uc usecase.ImageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ib, err := uc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ib)
	}
}

type imageIntegrateRequest struct {
	Selected []string `json:"selected_images"`
}

func imageIntegrateHandler(uc usecase.ImageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req imageIntegrateRequest
		if r.ContentLength > 0 {
			if err := decodeJSON(r, &req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
		}
		res, err := uc.Integrate(r.Context(), chi.URLParam(r, "id"), req.Selected)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"images_used": res.ImagesUsed,
			"image_urls":  res.ImageURLs,
		})
	}
}

// ===== generation session =====

func blogStartHandler(uc usecase.SessionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := uc.Start(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionView(s))
	}
}

type blogStepRequest struct {
	Step string `json:"step"`
}

func blogStepHandler(uc usecase.SessionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req blogStepRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		res, err := uc.Advance(r.Context(), chi.URLParam(r, "id"), req.Step)
		if err != nil {
			writeError(w, err)
			return
		}
		out := map[string]any{
			"step":           res.Step,
			"next_step":      res.NextStep,
			"next_step_name": model.StepName(res.NextStep),
		}
		if res.Fragment != "" {
			out["content"] = res.Fragment
		}
		if res.Quality != nil {
			out["quality"] = res.Quality
		}
		if res.Article != nil {
			out["article_id"] = res.Article.ID
			out["word_count"] = res.Article.WordCount
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func blogSessionHandler(uc usecase.SessionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := uc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionView(s))
	}
}

func sessionView(s *model.GenerationSession) map[string]any {
	return map[string]any{
		"keyword_set_id": s.KeywordSetID,
		"current_step":   s.CurrentStep,
		"step_name":      model.StepName(s.CurrentStep),
		"started_at":     s.StartedAt,
		"expires_at":     s.ExpiresAt,
	}
}

func blogSummaryHandler(keywords usecase.KeywordUseCase, articles repository.ArticleRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ks, err := keywords.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		a, err := articles.FindByKeywordSet(r.Context(), nil, id)
		if err != nil {
			writeError(w, err)
			return
		}
		out := map[string]any{
			"keyword_set_id": ks.ID,
			"main_keyword":   ks.MainKeyword,
			"status":         ks.Status,
			"article_id":     a.ID,
			"title":          a.H1,
			"word_count":     a.WordCount,
			"has_images":     a.WithImagesHTML != "",
			"publish_ready":  a.PublishReadyHTML != "",
		}
		if a.Quality != nil {
			out["quality"] = a.Quality
		}
		if a.Metadata != nil {
			out["metadata"] = a.Metadata
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func blogDownloadHandler(articles repository.ArticleRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := articles.FindByKeywordSet(r.Context(), nil, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		name := a.ID
		if a.Metadata != nil && a.Metadata.Slug != "" {
			name = a.Metadata.Slug
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".html"))
		_, _ = w.Write([]byte(a.BestHTML()))
	}
}

// ===== metadata =====

func metadataHandler(uc usecase.MetadataUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := uc.Generate(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"article_id": a.ID,
			"metadata":   a.Metadata,
			"word_count": a.WordCount,
		})
	}
}

// ===== batches =====

type batchStartRequest struct {
	Rows []model.BatchRow `json:"rows"`
}

func batchStartHandler(uc usecase.BatchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchStartRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		job, err := uc.Start(r.Context(), req.Rows)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, job)
	}
}

func batchListHandler(uc usecase.BatchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		jobs, err := uc.List(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, jobs)
	}
}

func batchStatusHandler(uc usecase.BatchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := uc.Status(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

func batchResultsHandler(uc usecase.BatchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := uc.Results(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}
