package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/swapnilgarg7/sync-sure/config"
	"github.com/swapnilgarg7/sync-sure/model"
	"github.com/swapnilgarg7/sync-sure/pkg/extract"
	"github.com/swapnilgarg7/sync-sure/pkg/logger"
)

// ErrUnsupportedMedia means text extraction produced nothing for one or both
// uploads. Mapped to 415 by the handler; the oracle is never called.
var ErrUnsupportedMedia = errors.New("failed to extract text from one or both files")

// ErrSaveFailed means an upload could not be written to scratch storage.
var ErrSaveFailed = errors.New("failed to save uploaded file")

// OracleInvoker is the part of OracleService the analyzer needs. Split out
// so tests can substitute a canned oracle.
type OracleInvoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Upload is one uploaded document: its original filename and content.
type Upload struct {
	Filename string
	Reader   io.Reader
	Size     int64
}

// AnalysisResult carries the outcome of one run. Exactly one of Report and
// Err is set: a parse failure is a result, not an error.
type AnalysisResult struct {
	ID     string
	Report map[string]any
	Err    *model.ErrorReport
}

// Analyzer runs the document-to-report pipeline: scratch save, text
// extraction, prompt rendering, oracle invocation, report parsing. Scratch
// files are deleted on every exit path.
type Analyzer struct {
	oracle       OracleInvoker
	store        *AnalysisStore
	archive      *ArchiveService // nil when archival is disabled
	scratchDir   string
	strictSchema bool
}

func NewAnalyzer(cfg *config.Config, oracle OracleInvoker, store *AnalysisStore, archive *ArchiveService) *Analyzer {
	return &Analyzer{
		oracle:       oracle,
		store:        store,
		archive:      archive,
		scratchDir:   cfg.Server.ScratchDir,
		strictSchema: cfg.Oracle.StrictSchema,
	}
}

// Analyze compares a contract against an invoice and returns the oracle's
// verdict. Errors are returned for save and oracle failures; extraction
// failure is ErrUnsupportedMedia; a non-JSON oracle response comes back as
// AnalysisResult.Err, not as an error.
func (a *Analyzer) Analyze(ctx context.Context, tenant string, contract, invoice Upload) (*AnalysisResult, error) {
	analysisID := uuid.New().String()
	ctx = context.WithValue(ctx, logger.AnalysisIDKey, analysisID)

	record := &model.Analysis{
		ID:           analysisID,
		ContractFile: contract.Filename,
		InvoiceFile:  invoice.Filename,
		Tenant:       tenant,
		Status:       model.StatusProcessing,
		CreatedAt:    time.Now(),
	}
	a.store.Save(record)

	contractPath, err := a.saveScratch(contract)
	if err != nil {
		a.store.Fail(analysisID, err.Error())
		return nil, fmt.Errorf("%w: contract: %v", ErrSaveFailed, err)
	}
	defer a.removeScratch(ctx, contractPath)

	invoicePath, err := a.saveScratch(invoice)
	if err != nil {
		a.store.Fail(analysisID, err.Error())
		return nil, fmt.Errorf("%w: invoice: %v", ErrSaveFailed, err)
	}
	defer a.removeScratch(ctx, invoicePath)

	contractText, _ := extract.Text(contractPath, contract.Filename)
	invoiceText, _ := extract.Text(invoicePath, invoice.Filename)
	if contractText == "" || invoiceText == "" {
		a.store.Fail(analysisID, ErrUnsupportedMedia.Error())
		return nil, fmt.Errorf("%w: contract=%q invoice=%q", ErrUnsupportedMedia, contract.Filename, invoice.Filename)
	}

	logger.Info(ctx, "documents extracted",
		"contract_chars", len(contractText),
		"invoice_chars", len(invoiceText),
	)

	prompt := RenderPrompt(contractText, invoiceText)

	raw, err := a.oracle.Invoke(ctx, prompt)
	if err != nil {
		a.store.Fail(analysisID, err.Error())
		return nil, fmt.Errorf("oracle invocation failed: %w", err)
	}

	a.archiveDocuments(ctx, record, contractPath, invoicePath)

	report, errReport := ParseReport(raw, a.strictSchema)
	if errReport != nil {
		logger.Warn(ctx, "oracle output rejected",
			"code", errReport.Error,
			"exception", errReport.Exception,
		)
		a.store.Fail(analysisID, errReport.Error)
		return &AnalysisResult{ID: analysisID, Err: errReport}, nil
	}

	a.store.Complete(analysisID, report)
	return &AnalysisResult{ID: analysisID, Report: report}, nil
}

// saveScratch writes an upload to a uniquely named scratch file preserving
// the original extension, so the extractor's dispatch still works.
func (a *Analyzer) saveScratch(u Upload) (string, error) {
	ext := filepath.Ext(u.Filename)
	f, err := os.CreateTemp(a.scratchDir, "syncsure-*"+ext)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, u.Reader); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// removeScratch deletes a scratch file. Deletion errors are logged and
// swallowed; a request must never fail because cleanup did.
func (a *Analyzer) removeScratch(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn(ctx, "failed to remove scratch file", "path", path, "error", err)
	}
}

// archiveDocuments copies the scratch files into object storage, best
// effort. Runs before the deferred scratch cleanup.
func (a *Analyzer) archiveDocuments(ctx context.Context, record *model.Analysis, contractPath, invoicePath string) {
	if a.archive == nil {
		return
	}

	record.ContractArchive = a.archiveOne(ctx, record.Tenant, record.ID, record.ContractFile, contractPath)
	record.InvoiceArchive = a.archiveOne(ctx, record.Tenant, record.ID, record.InvoiceFile, invoicePath)
	a.store.Save(record)
}

func (a *Analyzer) archiveOne(ctx context.Context, tenant, analysisID, filename, path string) string {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn(ctx, "failed to open scratch file for archival", "path", path, "error", err)
		return ""
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.Warn(ctx, "failed to stat scratch file for archival", "path", path, "error", err)
		return ""
	}

	objectName, err := a.archive.ArchiveDocument(ctx, tenant, analysisID, filename, f, info.Size(), contentTypeForFilename(filename))
	if err != nil {
		logger.Warn(ctx, "failed to archive document", "filename", filename, "error", err)
		return ""
	}
	return objectName
}

func contentTypeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
