package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildDOCX writes a minimal OOXML document with the given paragraphs and
// returns its path.
func buildDOCX(t *testing.T, dir, name string, paragraphs []string) string {
	t.Helper()

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(fmt.Sprintf(`<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p))
	}
	doc.WriteString(`</w:body></w:document>`)

	return writeDOCXArchive(t, dir, name, doc.String())
}

func writeDOCXArchive(t *testing.T, dir, name, documentXML string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("Failed to write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write test docx: %v", err)
	}
	return path
}

func TestDOCXText(t *testing.T) {
	path := buildDOCX(t, t.TempDir(), "doc.docx", []string{
		"Master Services Agreement",
		"Unit rate: 100 USD",
		"Net 30 payment terms",
	})

	text := DOCXText(path)
	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 paragraph lines, got %d: %q", len(lines), text)
	}
	if lines[0] != "Master Services Agreement" {
		t.Errorf("Expected first paragraph, got %q", lines[0])
	}
	if lines[1] != "Unit rate: 100 USD" {
		t.Errorf("Expected second paragraph, got %q", lines[1])
	}
}

func TestDOCXTextRunsAndBreaks(t *testing.T) {
	documentXML := `<?xml version="1.0"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>split</w:t></w:r><w:r><w:t xml:space="preserve"> across runs</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>with</w:t><w:tab/><w:t>tab</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	path := writeDOCXArchive(t, t.TempDir(), "runs.docx", documentXML)

	text := DOCXText(path)
	if !strings.Contains(text, "split across runs") {
		t.Errorf("Expected joined runs, got %q", text)
	}
	if !strings.Contains(text, "with\ttab") {
		t.Errorf("Expected tab preserved, got %q", text)
	}
}

func TestDOCXTextCorrupt(t *testing.T) {
	dir := t.TempDir()

	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(dir, "bad.docx")
		if err := os.WriteFile(path, []byte("definitely not a zip archive"), 0o644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if got := DOCXText(path); got != "" {
			t.Errorf("Expected empty text for corrupt docx, got %q", got)
		}
	})

	t.Run("zip without document part", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create("word/styles.xml")
		w.Write([]byte("<styles/>"))
		zw.Close()

		path := filepath.Join(dir, "empty.docx")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if got := DOCXText(path); got != "" {
			t.Errorf("Expected empty text, got %q", got)
		}
	})

	t.Run("broken xml keeps salvaged text", func(t *testing.T) {
		broken := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			`<w:p><w:r><w:t>salvaged</w:t></w:r></w:p><w:p><w:r><w:t>lost`
		path := writeDOCXArchive(t, dir, "broken.docx", broken)

		// Must not panic; whatever parsed before the failure is kept
		text := DOCXText(path)
		if !strings.Contains(text, "salvaged") {
			t.Errorf("Expected salvaged paragraph, got %q", text)
		}
	})
}
