// File: internal/usecase/batch_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/adapter"
	"blogforge/internal/domain/ports/repository"
	"blogforge/internal/infra/metrics"
)

// Compile-time check
var _ BatchUseCase = (*batchUC)(nil)

type BatchUseCase interface {
	// Start validates the submission, persists a queued job and launches its
	// worker. The worker is decoupled from the caller's context.
	Start(ctx context.Context, rows []model.BatchRow) (*model.BatchJob, error)

	Status(ctx context.Context, jobID string) (*model.BatchJob, error)
	Results(ctx context.Context, jobID string) ([]model.RowResult, error)
	List(ctx context.Context, limit int) ([]*model.BatchJob, error)
}

type batchUC struct {
	jobs     repository.BatchJobRepository
	keywords KeywordUseCase
	research ResearchUseCase
	images   ImageUseCase
	sessions SessionUseCase
	metadata MetadataUseCase
	notifier adapter.Notifier

	interRowDelay  time.Duration
	interStepDelay time.Duration
	sleep          func(ctx context.Context, d time.Duration)
	log            *zerolog.Logger
}

func NewBatchUseCase(
	jobs repository.BatchJobRepository,
	keywords KeywordUseCase,
	research ResearchUseCase,
	images ImageUseCase,
	sessions SessionUseCase,
	metadata MetadataUseCase,
	notifier adapter.Notifier,
	interRowDelay, interStepDelay time.Duration,
	logger *zerolog.Logger,
) *batchUC {
	l := logger.With().Str("component", "batch_uc").Logger()
	if interRowDelay <= 0 {
		interRowDelay = 2 * time.Second
	}
	if interStepDelay <= 0 {
		interStepDelay = 500 * time.Millisecond
	}
	return &batchUC{
		jobs:           jobs,
		keywords:       keywords,
		research:       research,
		images:         images,
		sessions:       sessions,
		metadata:       metadata,
		notifier:       notifier,
		interRowDelay:  interRowDelay,
		interStepDelay: interStepDelay,
		sleep:          sleepCtx,
		log:            &l,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (u *batchUC) Start(ctx context.Context, rows []model.BatchRow) (*model.BatchJob, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: batch needs at least one row", domain.ErrInvalidArgument)
	}

	job := model.NewBatchJob(ulid.Make().String(), len(rows))
	if err := u.jobs.Save(ctx, nil, job); err != nil {
		return nil, fmt.Errorf("persist batch job: %w", err)
	}

	// The worker outlives the request that started it.
	go u.run(context.Background(), job, rows)

	u.log.Info().Str("job", job.ID).Int("rows", len(rows)).Msg("batch started")
	return job, nil
}

func (u *batchUC) Status(ctx context.Context, jobID string) (*model.BatchJob, error) {
	return u.jobs.FindByID(ctx, nil, jobID)
}

func (u *batchUC) Results(ctx context.Context, jobID string) ([]model.RowResult, error) {
	job, err := u.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	return job.Results, nil
}

func (u *batchUC) List(ctx context.Context, limit int) ([]*model.BatchJob, error) {
	if limit <= 0 {
		limit = 20
	}
	return u.jobs.FindRecent(ctx, nil, limit)
}

// run is the single worker owning one job. Rows are strictly sequential;
// the downstream collaborators are rate-limited and must not see fan-out.
func (u *batchUC) run(ctx context.Context, job *model.BatchJob, rows []model.BatchRow) {
	defer func() {
		if r := recover(); r != nil {
			u.log.Error().Interface("panic", r).Str("job", job.ID).Msg("batch worker panicked")
			job.Status = model.BatchFailed
			job.Stage = fmt.Sprintf("worker crashed: %v", r)
			u.persist(ctx, job)
			metrics.IncBatchJob(string(model.BatchFailed))
		}
	}()

	job.Status = model.BatchRunning
	u.persist(ctx, job)

	for i, row := range rows {
		if i > 0 {
			u.sleep(ctx, u.interRowDelay)
		}
		rowStart := time.Now()
		job.CurrentRow = i + 1
		u.setStage(ctx, job, fmt.Sprintf("row %d/%d: %q", i+1, len(rows), row.MainKeyword))

		result := u.processRow(ctx, job, i+1, row)
		job.Results = append(job.Results, result)
		if result.Status == "success" {
			job.Processed++
			metrics.IncBatchRow("ok")
		} else {
			job.Failed++
			metrics.IncBatchRow("failed")
		}
		job.Progress = model.ProgressPercent(job.Processed, job.TotalRows)
		u.persist(ctx, job)
		metrics.ObserveBatchRowSeconds(time.Since(rowStart).Seconds())
	}

	if job.Failed == 0 {
		job.Status = model.BatchCompletedOK
	} else {
		job.Status = model.BatchCompletedWithErrors
	}
	now := time.Now()
	job.CompletedAt = &now
	job.Stage = "done"
	u.persist(ctx, job)
	metrics.IncBatchJob(string(job.Status))

	if err := u.notifier.Notify(ctx, fmt.Sprintf(
		"Batch %s finished: %s (%d ok, %d failed of %d)",
		job.ID, job.Status, job.Processed, job.Failed, job.TotalRows)); err != nil {
		u.log.Warn().Err(err).Str("job", job.ID).Msg("completion notification failed")
	}
	u.log.Info().Str("job", job.ID).Str("status", string(job.Status)).
		Int("processed", job.Processed).Int("failed", job.Failed).Msg("batch finished")
}

// processRow runs the full pipeline for one row. Research, generation and
// metadata are fatal for the row; image search and placement are not.
func (u *batchUC) processRow(ctx context.Context, job *model.BatchJob, rowNum int, row model.BatchRow) model.RowResult {
	result := model.RowResult{Row: rowNum, MainKeyword: row.MainKeyword}
	fail := func(stage string, err error) model.RowResult {
		u.log.Error().Err(err).Str("job", job.ID).Int("row", rowNum).Str("stage", stage).Msg("row failed")
		metrics.IncStageFailure(stage, true)
		result.Status = "failed"
		result.Error = err.Error()
		result.Timestamp = time.Now()
		return result
	}

	if err := ValidateRow(row.MainKeyword, row.Subsidiary); err != nil {
		return fail("validation", err)
	}

	u.setStage(ctx, job, fmt.Sprintf("registering keyword set %q", row.MainKeyword))
	ks, err := u.keywords.Create(ctx, row.MainKeyword, row.Subsidiary)
	if err != nil {
		return fail("register", err)
	}
	result.KeywordSetID = ks.ID

	u.setStage(ctx, job, fmt.Sprintf("scraping research for %q", row.MainKeyword))
	if _, err := u.research.Run(ctx, ks.ID); err != nil {
		return fail("research", err)
	}

	u.setStage(ctx, job, fmt.Sprintf("searching images for %q", row.MainKeyword))
	haveImages := true
	if _, err := u.images.Fetch(ctx, ks.ID); err != nil {
		u.log.Warn().Err(err).Str("job", job.ID).Int("row", rowNum).Msg("image search failed, continuing without images")
		metrics.IncStageFailure("image_search", false)
		haveImages = false
	}

	u.setStage(ctx, job, fmt.Sprintf("generating article for %q", row.MainKeyword))
	article, err := u.driveSession(ctx, job, ks.ID)
	if err != nil {
		return fail("generation", err)
	}
	result.ArticleID = article.ID

	if haveImages {
		u.setStage(ctx, job, fmt.Sprintf("placing images for %q", row.MainKeyword))
		if _, err := u.images.Integrate(ctx, ks.ID, nil); err != nil {
			u.log.Warn().Err(err).Str("job", job.ID).Int("row", rowNum).Msg("image integration failed, continuing")
			metrics.IncStageFailure("image_integration", false)
		}
	}

	u.setStage(ctx, job, fmt.Sprintf("finalizing metadata for %q", row.MainKeyword))
	if _, err := u.metadata.Generate(ctx, ks.ID); err != nil {
		return fail("metadata", err)
	}

	result.Status = "success"
	result.Timestamp = time.Now()
	return result
}

// driveSession walks a generation session through every step in order.
func (u *batchUC) driveSession(ctx context.Context, job *model.BatchJob, keywordSetID string) (*model.Article, error) {
	if _, err := u.sessions.Start(ctx, keywordSetID); err != nil {
		return nil, err
	}
	for n := model.StepTitleTag; n <= model.StepFinalize; n++ {
		stepName := model.StepName(n)
		u.setStage(ctx, job, fmt.Sprintf("generation step %d/%d: %s", n, model.StepCount, stepName))
		res, err := u.sessions.Advance(ctx, keywordSetID, stepName)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", stepName, err)
		}
		if n == model.StepFinalize {
			return res.Article, nil
		}
		u.sleep(ctx, u.interStepDelay)
	}
	return nil, errors.New("finalize step returned no article")
}

func (u *batchUC) setStage(ctx context.Context, job *model.BatchJob, stage string) {
	job.Stage = stage
	u.persist(ctx, job)
}

// persist is best-effort: a durable-write failure is logged and never fails
// the row. Pollers may briefly see stale data, never an aborted job.
func (u *batchUC) persist(ctx context.Context, job *model.BatchJob) {
	job.UpdatedAt = time.Now()
	if err := u.jobs.Save(ctx, nil, job); err != nil {
		u.log.Warn().Err(err).Str("job", job.ID).Msg("status persist failed")
	}
}
