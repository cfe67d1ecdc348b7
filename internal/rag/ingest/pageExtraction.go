package ingest

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

func (l *Loader) extractPDF(path string) ([]commonModels.Page, error) {
	l.logger.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []commonModels.Page
	numPages := f.NumPage()
	l.logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := l.protectExtract(page)
		if err != nil {
			// keep going, one bad page should not sink the document
			l.logger.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, commonModels.Page{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

func extractPlainText(path string) ([]commonModels.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []commonModels.Page{{Number: 0, Content: string(data)}}, nil
}

// extractWithCat reads .odt, .docx, .rtf and legacy .doc files. Page boundaries
// are not available for these formats, so everything is reported as page 0.
func (l *Loader) extractWithCat(path string, docType commonModels.DocType) ([]commonModels.Page, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", docType, err)
	}
	return []commonModels.Page{{Number: 0, Content: text}}, nil
}

func (l *Loader) protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("pdf page panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(l.pageTimeout):
		return "", errors.New("timeout")
	}
}
