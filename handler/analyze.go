package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/swapnilgarg7/sync-sure/middleware"
	"github.com/swapnilgarg7/sync-sure/service"
)

// DocumentAnalyzer is the part of the analyzer the HTTP layer needs.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, tenant string, contract, invoice service.Upload) (*service.AnalysisResult, error)
}

type AnalyzeHandler struct {
	analyzer DocumentAnalyzer
}

func NewAnalyzeHandler(analyzer DocumentAnalyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

// AnalyzeInvoice handles the contract/invoice comparison upload.
// 200: compliance report. 415: no text could be extracted. 500: save or
// oracle failure, or unparseable oracle output (ErrorReport body).
func (h *AnalyzeHandler) AnalyzeInvoice(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	contract, status, errMsg := formUpload(c, "contract")
	if errMsg != "" {
		c.JSON(status, gin.H{"error": errMsg})
		return
	}
	defer contract.file.Close()

	invoice, status, errMsg := formUpload(c, "invoice")
	if errMsg != "" {
		c.JSON(status, gin.H{"error": errMsg})
		return
	}
	defer invoice.file.Close()

	result, err := h.analyzer.Analyze(c.Request.Context(), tenant, contract.upload, invoice.upload)
	switch {
	case errors.Is(err, service.ErrUnsupportedMedia):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case result.Err != nil:
		c.Header("X-Analysis-ID", result.ID)
		c.JSON(http.StatusInternalServerError, result.Err)
	default:
		c.Header("X-Analysis-ID", result.ID)
		c.JSON(http.StatusOK, result.Report)
	}
}

type formFile struct {
	upload service.Upload
	file   multipart.File
}

// formUpload pulls one named file out of the multipart form and validates
// its extension and magic bytes. Returns a non-empty errMsg on rejection.
func formUpload(c *gin.Context, field string) (formFile, int, string) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return formFile{}, http.StatusBadRequest, "Missing file field: " + field
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" && ext != ".docx" {
		file.Close()
		return formFile{}, http.StatusUnsupportedMediaType, "Only PDF and DOCX files are allowed"
	}

	if !contentMatchesExt(file, ext) {
		file.Close()
		return formFile{}, http.StatusUnsupportedMediaType, "File content does not match its extension"
	}

	return formFile{
		upload: service.Upload{
			Filename: header.Filename,
			Reader:   file,
			Size:     header.Size,
		},
		file: file,
	}, 0, ""
}

// contentMatchesExt sniffs the file's magic bytes. An unrecognized type is
// let through (the extractor is the real arbiter); a recognized type that
// contradicts the extension is rejected.
func contentMatchesExt(file multipart.File, ext string) bool {
	head := make([]byte, 262)
	n, _ := io.ReadFull(file, head)
	file.Seek(0, io.SeekStart)
	if n == 0 {
		return true
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return true
	}

	switch ext {
	case ".pdf":
		return kind.Extension == "pdf"
	case ".docx":
		// OOXML documents sniff as zip unless enough of the archive is read
		return kind.Extension == "docx" || kind.Extension == "zip"
	default:
		return false
	}
}
