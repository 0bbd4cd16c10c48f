package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/phrazzld/studycast/internal/domain"
)

// NoContentMessage is the client-facing message when nothing usable was submitted.
const NoContentMessage = "No usable content provided (PDF or text)."

// minFirstPassChars is the length the page-by-page pass must exceed before
// its output is trusted; shorter results go through the row pass.
const minFirstPassChars = 100

// Input is the raw material submitted with a task.
type Input struct {
	File     []byte
	Filename string
	Text     string
}

// textPass pulls plain text out of an opened document.
type textPass struct {
	name string
	run  func(ctx context.Context, r *pdf.Reader) (string, error)
}

// Extractor converts Input into clean text.
type Extractor struct {
	passes []textPass
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Extractor{
		passes: []textPass{
			{name: "pages", run: pageText},
			{name: "rows", run: rowText},
		},
		logger: logger.With("component", "extractor"),
	}, nil
}

// Extract returns the cleaned text of the uploaded PDF, falling back to the
// pasted text when the file is absent or yields nothing. A PDF that cannot be
// parsed is treated as empty. When neither source has content the error
// matches domain.ErrValidation.
func (e *Extractor) Extract(ctx context.Context, in Input) (string, error) {
	var extracted string

	if len(in.File) > 0 {
		text, err := e.pdfText(ctx, in.File)
		switch {
		case ctx.Err() != nil:
			return "", ctx.Err()
		case err != nil:
			e.logger.WarnContext(ctx, "pdf extraction failed, falling back to text",
				"filename", in.Filename,
				"size", len(in.File),
				"error", err)
		default:
			extracted = text
		}
	}

	if extracted == "" {
		extracted = strings.TrimSpace(in.Text)
	}
	if extracted == "" {
		return "", domain.NewValidationError(NoContentMessage)
	}

	cleaned := CleanText(extracted)
	if cleaned == "" {
		return "", domain.NewValidationError(NoContentMessage)
	}
	return cleaned, nil
}

// pdfText runs the passes in order. Every pass but the last must produce more
// than minFirstPassChars to be accepted; the last pass is taken when it
// produced anything, otherwise the first short result is used.
func (e *Extractor) pdfText(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var (
		short   string
		lastErr error
	)
	for i, pass := range e.passes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := pass.run(ctx, r)
		out = strings.TrimSpace(out)
		if err != nil {
			e.logger.DebugContext(ctx, "pdf pass failed", "pass", pass.name, "error", err)
			lastErr = err
			continue
		}
		if (i == len(e.passes)-1 && out != "") || len([]rune(out)) > minFirstPassChars {
			e.logger.DebugContext(ctx, "pdf text extracted", "pass", pass.name, "chars", len(out))
			return out, nil
		}
		if short == "" {
			short = out
		}
	}
	if short != "" {
		return short, nil
	}
	return "", lastErr
}

// pageText concatenates the plain text of every page, skipping pages that
// fail to decode.
func pageText(ctx context.Context, r *pdf.Reader) (string, error) {
	fonts := make(map[string]*pdf.Font)
	var pages []string

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// rowText rebuilds each page line by line from positioned text runs.
func rowText(ctx context.Context, r *pdf.Reader) (string, error) {
	var b strings.Builder

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			b.WriteString(joinRun(row.Content))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// joinRun glues the text runs of one row back together. Runs that share an
// x offset belong to the same text block and are concatenated; a space
// separates runs placed at different offsets.
func joinRun(texts []pdf.Text) string {
	var (
		b     strings.Builder
		prevX float64
	)
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		if b.Len() > 0 && t.X != prevX && !endsInSpace(b.String()) && !startsWithSpace(t.S) {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevX = t.X
	}
	return b.String()
}

func endsInSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
