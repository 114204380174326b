// Package parser converts raw uploaded bytes into text segments ready
// for chunking. PDFs come back one segment per physical page; HTML is
// reduced to its body text; everything else goes through a best-effort
// plain-text extraction.
package parser

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"go.uber.org/zap"

	"github.com/swiftbeard/ragserver/internal/apperr"
	"github.com/swiftbeard/ragserver/pkg/logger"
)

// Segment is one logical unit of parsed text: a PDF page, or the whole
// document for formats without page structure.
type Segment struct {
	Number int
	Text   string
}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Parse routes on content type. Media type parameters (charset etc.)
// are ignored.
func (p *Parser) Parse(data []byte, filename, contentType string) ([]Segment, error) {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	switch mediaType {
	case "application/pdf":
		return p.parsePDF(data, filename)
	case "text/html":
		return p.parseHTML(data, filename)
	default:
		return p.parseGeneric(data, filename)
	}
}

// parsePDF emits one segment per physical page, in page order, with no
// header or footer trimming. Pages that yield no text are skipped.
func (p *Parser) parsePDF(data []byte, filename string) ([]Segment, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.IOf("failed to open pdf %s: %v", filename, err)
	}

	var segments []Segment
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("Failed to extract pdf page",
				zap.String("filename", filename),
				zap.Int("page", i),
				zap.Error(err),
			)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		segments = append(segments, Segment{Number: i, Text: content})
	}

	logger.Debug("PDF parsed",
		zap.String("filename", filename),
		zap.Int("pages", numPages),
		zap.Int("segments", len(segments)),
	)

	return segments, nil
}

func (p *Parser) parseHTML(data []byte, filename string) ([]Segment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.IOf("failed to parse html %s: %v", filename, err)
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := doc.Find("body").Text()
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, nil
	}

	return []Segment{{Number: 1, Text: text}}, nil
}

// parseGeneric handles docx, odt, rtf and plain text. The extractor
// dispatches on file extension and wants a path, so the bytes take a
// detour through a temp file.
func (p *Parser) parseGeneric(data []byte, filename string) ([]Segment, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".txt"
	}

	tmp, err := os.CreateTemp("", "ragserver-*"+ext)
	if err != nil {
		return nil, apperr.IOf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, apperr.IOf("failed to write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, apperr.IOf("failed to close temp file: %v", err)
	}

	text, err := cat.File(tmp.Name())
	if err != nil {
		return nil, apperr.IOf("failed to extract text from %s: %v", filename, err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return []Segment{{Number: 1, Text: text}}, nil
}
