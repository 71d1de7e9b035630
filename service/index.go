package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/swapnilgarg7/sync-sure/config"
	"github.com/swapnilgarg7/sync-sure/pkg/extract"
	"github.com/swapnilgarg7/sync-sure/pkg/vectorstore"
)

// Embedder turns text into vectors. Satisfied by OracleService.
type Embedder interface {
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// IndexService maintains the similarity-search index over sample
// contract/invoice pages. The index is populated once, before the server
// starts serving; after that it is read-only.
type IndexService struct {
	cfg      *config.IndexConfig
	embedder Embedder
	store    *vectorstore.Client
}

func NewIndexService(cfg *config.IndexConfig, embedder Embedder, store *vectorstore.Client) *IndexService {
	return &IndexService{
		cfg:      cfg,
		embedder: embedder,
		store:    store,
	}
}

// BuildIfMissing populates the index from the configured sample documents
// unless the collection already exists. The existence check makes restarts
// idempotent; an existing collection is never rebuilt.
func (s *IndexService) BuildIfMissing(ctx context.Context) error {
	exists, err := s.store.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		count, err := s.store.Count(ctx, s.cfg.Collection)
		if err != nil {
			slog.Warn("failed to count index points", "error", err)
		}
		slog.Info("similarity index already built",
			"collection", s.cfg.Collection,
			"points", count,
		)
		return nil
	}

	points := s.samplePoints(ctx)
	if len(points) == 0 {
		slog.Warn("no sample pages to index, skipping index build")
		return nil
	}

	if err := s.store.CreateCollection(ctx, s.cfg.Collection, s.cfg.Dimensions); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	if err := s.store.Upsert(ctx, s.cfg.Collection, points); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	slog.Info("similarity index built",
		"collection", s.cfg.Collection,
		"points", len(points),
	)
	return nil
}

// Search embeds the query and returns the most similar indexed pages.
func (s *IndexService) Search(ctx context.Context, query string, limit int, docType string) ([]vectorstore.Result, error) {
	if limit <= 0 {
		limit = s.cfg.TopK
	}

	vectors, err := s.embedder.Embed(ctx, s.cfg.EmbeddingModel, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return s.store.Search(ctx, s.cfg.Collection, vectors[0], limit, docType)
}

// samplePoints extracts and embeds the configured sample documents. A
// missing or unreadable sample is logged and skipped, matching the
// best-effort nature of the index.
func (s *IndexService) samplePoints(ctx context.Context) []vectorstore.Point {
	type sample struct {
		path    string
		docType string
		label   string
	}
	samples := []sample{
		{s.cfg.SampleContract, "contract", "Sample Contract"},
		{s.cfg.SampleInvoice, "invoice", "Sample Invoice"},
	}

	var texts []string
	var payloads []map[string]any

	for _, sm := range samples {
		if sm.path == "" {
			continue
		}
		pages := extract.PDFPages(sm.path)
		if len(pages) == 0 {
			slog.Warn("no pages extracted from sample", "path", sm.path)
			continue
		}
		for _, page := range pages {
			if page.Text == "" {
				continue
			}
			texts = append(texts, fmt.Sprintf("Source: %s\nPage: %d\n\n%s", sm.label, page.Number, page.Text))
			payloads = append(payloads, map[string]any{
				"source":   filepath.Base(sm.path),
				"doc_type": sm.docType,
				"page":     page.Number,
				"text":     page.Text,
			})
		}
	}

	if len(texts) == 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(ctx, s.cfg.EmbeddingModel, texts)
	if err != nil {
		slog.Error("failed to embed sample pages", "error", err)
		return nil
	}

	points := make([]vectorstore.Point, len(texts))
	for i := range texts {
		points[i] = vectorstore.Point{
			ID:      uuid.New().String(),
			Vector:  vectors[i],
			Payload: payloads[i],
		}
	}
	return points
}
