package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/swapnilgarg7/sync-sure/config"
	"github.com/swapnilgarg7/sync-sure/model"
)

// AnalysisStore is an in-memory history of analysis runs. It is bounded:
// once maxAnalyses is exceeded the oldest records are dropped. In production
// this would be backed by a database.
type AnalysisStore struct {
	analyses    map[string]*model.Analysis
	mu          sync.RWMutex
	maxAnalyses int // 0 = unlimited
}

func NewAnalysisStore(cfg *config.StoreConfig) *AnalysisStore {
	maxAnalyses := cfg.MaxAnalyses
	if maxAnalyses < 0 {
		maxAnalyses = 0
	}
	slog.Info("analysis store initialized", "max_analyses", maxAnalyses)
	return &AnalysisStore{
		analyses:    make(map[string]*model.Analysis),
		maxAnalyses: maxAnalyses,
	}
}

func (s *AnalysisStore) Save(a *model.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.UpdatedAt = time.Now()
	s.analyses[a.ID] = a

	s.evictIfNeeded()
}

func (s *AnalysisStore) Get(id string) *model.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyses[id]
}

func (s *AnalysisStore) GetByTenant(tenant string) []*model.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Analysis
	for _, a := range s.analyses {
		if a.Tenant == tenant {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *AnalysisStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.analyses, id)
}

// Complete records a finished run with its report.
func (s *AnalysisStore) Complete(id string, report any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.analyses[id]; ok {
		a.Report = report
		a.Status = model.StatusCompleted
		a.ErrorMsg = ""
		a.UpdatedAt = time.Now()
	}
}

// Fail records a failed run with its error message.
func (s *AnalysisStore) Fail(id string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.analyses[id]; ok {
		a.Status = model.StatusFailed
		a.ErrorMsg = errMsg
		a.UpdatedAt = time.Now()
	}
}

// Count returns the number of analyses in the store.
func (s *AnalysisStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.analyses)
}

// evictIfNeeded removes the oldest analyses when the store exceeds
// maxAnalyses. Must be called with the lock held.
func (s *AnalysisStore) evictIfNeeded() {
	if s.maxAnalyses <= 0 {
		return
	}
	if len(s.analyses) <= s.maxAnalyses {
		return
	}

	all := make([]*model.Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	removeCount := len(all) - s.maxAnalyses
	for i := 0; i < removeCount; i++ {
		slog.Info("evicting old analysis",
			"analysis_id", all[i].ID,
			"created_at", all[i].CreatedAt,
		)
		delete(s.analyses, all[i].ID)
	}
}
