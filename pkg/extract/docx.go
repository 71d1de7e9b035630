package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"log/slog"
	"strings"
)

const docxDocumentPath = "word/document.xml"

// DOCXText extracts paragraph text from an OOXML word-processing document,
// one paragraph per line, in document order. Unreadable archives or XML
// yield whatever was collected before the failure.
func DOCXText(path string) string {
	zr, err := zip.OpenReader(path)
	if err != nil {
		slog.Error("failed to open docx", "path", path, "error", err)
		return ""
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxDocumentPath {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			slog.Error("failed to open docx document part", "path", path, "error", err)
			return ""
		}
		text := docxParagraphs(rc)
		rc.Close()
		return text
	}

	slog.Warn("docx has no document part", "path", path)
	return ""
}

// docxParagraphs walks the document XML collecting character data inside
// <w:t> runs, emitting a newline at each </w:p>.
func docxParagraphs(r io.Reader) string {
	decoder := xml.NewDecoder(r)

	var out strings.Builder
	var paragraph strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("docx xml decode stopped early", "error", err)
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				paragraph.WriteByte('\t')
			case "br":
				paragraph.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteString(paragraph.String())
				out.WriteByte('\n')
				paragraph.Reset()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}

	// Text outside any closed paragraph still counts
	if paragraph.Len() > 0 {
		out.WriteString(paragraph.String())
	}

	return strings.TrimSpace(out.String())
}
