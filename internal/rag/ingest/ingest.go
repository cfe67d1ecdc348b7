package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
)

const defaultPageTimeout = 10 * time.Second

var supported = map[string]commonModels.DocType{
	".pdf":  commonModels.PDF,
	".docx": commonModels.DOCX,
	".doc":  commonModels.DOC,
	".txt":  commonModels.TXT,
	".md":   commonModels.MD,
	".rtf":  commonModels.RTF,
	".odt":  commonModels.ODT,
}

// Loader turns an uploaded file into pages of plain text.
type Loader struct {
	pageTimeout time.Duration
	logger      *logger_i.Logger
}

func NewLoader() *Loader {
	return &Loader{
		pageTimeout: defaultPageTimeout,
		logger:      logger_i.NewLogger("Document Loader"),
	}
}

// GetDocType maps a filename to its document type, ERR when unsupported.
func GetDocType(filename string) commonModels.DocType {
	if t, ok := supported[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return commonModels.ERR
}

func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".doc", ".txt", ".md", ".rtf", ".odt"}
}

// Load extracts the pages of the file at path. filename is the name the user
// uploaded and decides the extractor. Blank pages are dropped.
func (l *Loader) Load(path, filename string) ([]commonModels.Page, error) {
	docType := GetDocType(filename)
	if docType == commonModels.ERR {
		return nil, ragErrors.New(ragErrors.DocumentLoad, "%s: unsupported file type %q, allowed %s",
			filename, filepath.Ext(filename), strings.Join(SupportedExtensions(), ", "))
	}
	l.logger.Debug("Loading document", "filename", filename, "type", docType)

	var (
		raw []commonModels.Page
		err error
	)
	switch docType {
	case commonModels.PDF:
		raw, err = l.extractPDF(path)
	case commonModels.TXT, commonModels.MD:
		raw, err = extractPlainText(path)
	default:
		raw, err = l.extractWithCat(path, docType)
	}
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.DocumentLoad, err, "%s: could not extract text", filename)
	}

	pages := make([]commonModels.Page, 0, len(raw))
	for _, p := range raw {
		p.Content = cleanText(p.Content)
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		return nil, ragErrors.New(ragErrors.DocumentLoad, "%s: no extractable text", filename)
	}
	l.logger.Debug("Loaded document", "filename", filename, "pages", len(pages))
	return pages, nil
}

// LoadBytes stages data in a temporary file carrying the original extension
// and loads it.
func (l *Loader) LoadBytes(data []byte, filename string) ([]commonModels.Page, error) {
	if GetDocType(filename) == commonModels.ERR {
		return l.Load("", filename)
	}
	f, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.DocumentLoad, err, "%s: could not stage upload", filename)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, ragErrors.Wrap(ragErrors.DocumentLoad, err, "%s: could not stage upload", filename)
	}
	if err := f.Close(); err != nil {
		return nil, ragErrors.Wrap(ragErrors.DocumentLoad, err, "%s: could not stage upload", filename)
	}
	return l.Load(f.Name(), filename)
}

// cleanText drops control characters other than newlines and tabs, and
// replaces invalid UTF-8. Legacy binary formats leave a lot of both behind.
func cleanText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
