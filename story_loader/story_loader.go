package story_loader

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// contentSelectors are the HTML containers searched for story paragraphs
// before falling back to the whole body.
const contentSelectors = "article, .content, #content, main, .post, #main, .entry-content, .post-content, .story, #story"

var (
	spaceRun     = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLineRun = regexp.MustCompile(`\n{3,}`)
)

// StoryLoader turns uploaded documents into plain story text. Paragraph
// breaks are kept as blank lines so the segmenter can split on them.
type StoryLoader struct {
	logger *slog.Logger
}

func NewStoryLoader(logger *slog.Logger) *StoryLoader {
	return &StoryLoader{
		logger: logger,
	}
}

// LoadFile reads a story from disk.
func (l *StoryLoader) LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read story file: %w", err)
	}
	return l.Load(filepath.Base(path), data)
}

// Load extracts the text of a document, picking the format from the file
// extension.
func (l *StoryLoader) Load(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		text string
		err  error
	)
	switch ext {
	case ".txt", ".md", "":
		text = string(data)
	case ".pdf":
		text, err = l.ExtractTextFromPDF(data)
	case ".docx", ".doc", ".odt", ".rtf":
		text, err = l.ExtractTextFromDocument(filename, data)
	case ".html", ".htm":
		text, err = l.ExtractTextFromHTML(data)
	default:
		return "", fmt.Errorf("unsupported story format: %s", ext)
	}
	if err != nil {
		return "", err
	}

	text = cleanText(text)
	if text == "" {
		return "", fmt.Errorf("no text content found in %s", filename)
	}

	l.logger.Info("Story loaded",
		slog.String("file", filename),
		slog.Int("text_length", len(text)))
	return text, nil
}

func (l *StoryLoader) ExtractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		l.logger.Error("Failed to create PDF reader",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	totalPage := reader.NumPage()
	var pages []string
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			l.logger.Warn("Null page encountered", slog.Int("page_number", pageIndex))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", pageIndex, err)
		}
		pages = append(pages, text)
	}

	l.logger.Debug("Extracted text from PDF", slog.Int("total_pages", totalPage))
	return strings.Join(pages, "\n\n"), nil
}

// ExtractTextFromDocument handles word processor formats through docconv.
func (l *StoryLoader) ExtractTextFromDocument(filename string, data []byte) (string, error) {
	mimeType := docconv.MimeTypeByExtension(filename)

	result, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		l.logger.Error("Failed to convert document",
			slog.String("mime_type", mimeType),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to convert document: %w", err)
	}
	return result.Body, nil
}

// ExtractTextFromHTML keeps one paragraph per <p> found in the main content
// area, or the body text when the page has no paragraphs.
func (l *StoryLoader) ExtractTextFromHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}
	doc.Find("script, style, nav, header, footer").Remove()

	root := doc.Find(contentSelectors).First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var paragraphs []string
	root.Find("p").Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) == 0 {
		return root.Text(), nil
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

func cleanText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
