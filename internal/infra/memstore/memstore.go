// Package memstore provides in-memory implementations of every repository
// port. They back the single-binary dev mode and unit tests; production
// wiring uses postgres and redis instead.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/repository"
)

// ===== KeywordSetRepository =====

var _ repository.KeywordSetRepository = (*KeywordSetRepo)(nil)

type KeywordSetRepo struct {
	mu    sync.RWMutex
	store map[string]*model.KeywordSet

	// SaveErr lets tests simulate persistence failures.
	SaveErr error
}

func NewKeywordSetRepo() *KeywordSetRepo {
	return &KeywordSetRepo{store: make(map[string]*model.KeywordSet)}
}

func (m *KeywordSetRepo) Save(ctx context.Context, qx any, ks *model.KeywordSet) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ks
	m.store[ks.ID] = &cp
	return nil
}

func (m *KeywordSetRepo) FindByID(ctx context.Context, qx any, id string) (*model.KeywordSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ks, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ks
	return &cp, nil
}

func (m *KeywordSetRepo) FindAll(ctx context.Context, qx any, limit int) ([]*model.KeywordSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.KeywordSet, 0, len(m.store))
	for _, ks := range m.store {
		cp := *ks
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *KeywordSetRepo) UpdateStatus(ctx context.Context, qx any, id string, status model.KeywordSetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ks, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	ks.Status = status
	ks.UpdatedAt = time.Now()
	return nil
}

func (m *KeywordSetRepo) Delete(ctx context.Context, qx any, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// ===== ResearchRepository =====

var _ repository.ResearchRepository = (*ResearchRepo)(nil)

type ResearchRepo struct {
	mu    sync.RWMutex
	store map[string]*model.ResearchData
}

func NewResearchRepo() *ResearchRepo {
	return &ResearchRepo{store: make(map[string]*model.ResearchData)}
}

func (m *ResearchRepo) Save(ctx context.Context, qx any, rd *model.ResearchData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rd
	m.store[rd.KeywordSetID] = &cp
	return nil
}

func (m *ResearchRepo) FindByKeywordSet(ctx context.Context, qx any, keywordSetID string) (*model.ResearchData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rd, ok := m.store[keywordSetID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rd
	return &cp, nil
}

// ===== ImageRepository =====

var _ repository.ImageRepository = (*ImageRepo)(nil)

type ImageRepo struct {
	mu    sync.RWMutex
	store map[string]*model.ImageBatch
}

func NewImageRepo() *ImageRepo {
	return &ImageRepo{store: make(map[string]*model.ImageBatch)}
}

func (m *ImageRepo) Save(ctx context.Context, qx any, ib *model.ImageBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ib
	m.store[ib.KeywordSetID] = &cp
	return nil
}

func (m *ImageRepo) FindByKeywordSet(ctx context.Context, qx any, keywordSetID string) (*model.ImageBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ib, ok := m.store[keywordSetID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ib
	return &cp, nil
}

// ===== ArticleRepository =====

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

type ArticleRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Article // by article id

	SaveErr error
}

func NewArticleRepo() *ArticleRepo {
	return &ArticleRepo{store: make(map[string]*model.Article)}
}

func (m *ArticleRepo) Save(ctx context.Context, qx any, a *model.Article) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *ArticleRepo) FindByID(ctx context.Context, qx any, id string) (*model.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *ArticleRepo) FindByKeywordSet(ctx context.Context, qx any, keywordSetID string) (*model.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Article
	for _, a := range m.store {
		if a.KeywordSetID != keywordSetID {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// ===== BatchJobRepository =====

var _ repository.BatchJobRepository = (*BatchJobRepo)(nil)

type BatchJobRepo struct {
	mu    sync.RWMutex
	store map[string]*model.BatchJob

	SaveErr error
}

func NewBatchJobRepo() *BatchJobRepo {
	return &BatchJobRepo{store: make(map[string]*model.BatchJob)}
}

func (m *BatchJobRepo) Save(ctx context.Context, qx any, job *model.BatchJob) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	cp.Results = append([]model.RowResult(nil), job.Results...)
	m.store[job.ID] = &cp
	return nil
}

func (m *BatchJobRepo) FindByID(ctx context.Context, qx any, id string) (*model.BatchJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	cp.Results = append([]model.RowResult(nil), job.Results...)
	return &cp, nil
}

func (m *BatchJobRepo) FindRecent(ctx context.Context, qx any, limit int) ([]*model.BatchJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.BatchJob, 0, len(m.store))
	for _, job := range m.store {
		cp := *job
		cp.Results = append([]model.RowResult(nil), job.Results...)
		out = append(out, &cp)
	}
	// ulid ids sort by creation time
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ===== SessionStore =====

var _ repository.SessionStore = (*SessionStore)(nil)

type SessionStore struct {
	mu    sync.Mutex
	store map[string]*model.GenerationSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{store: make(map[string]*model.GenerationSession)}
}

func (m *SessionStore) Put(ctx context.Context, s *model.GenerationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.KeywordSetID] = &cp
	return nil
}

func (m *SessionStore) PutIfStep(ctx context.Context, s *model.GenerationSession, expectStep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[s.KeywordSetID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if cur.CurrentStep != expectStep {
		return domain.ErrConflict
	}
	cp := *s
	m.store[s.KeywordSetID] = &cp
	return nil
}

func (m *SessionStore) Get(ctx context.Context, keywordSetID string) (*model.GenerationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[keywordSetID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *SessionStore) Delete(ctx context.Context, keywordSetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, keywordSetID)
	return nil
}

// ===== TransactionManager =====

var _ repository.TransactionManager = (*TxManager)(nil)

// TxManager satisfies the port without transactional semantics; the
// in-memory repos apply writes immediately.
type TxManager struct{}

func NewTxManager() *TxManager { return &TxManager{} }

func (TxManager) WithTx(ctx context.Context, fn func(ctx context.Context, qx any) error) error {
	return fn(ctx, nil)
}
