package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// TextFormatter writes the report's plain form or a custom template.
type TextFormatter struct {
	template *template.Template
}

// NewTextFormatter creates a new text formatter. The template, if any, is
// executed with the report as its data.
func NewTextFormatter(opts FormatterOptions) (*TextFormatter, error) {
	f := &TextFormatter{}
	if opts.Template != "" {
		tmpl, err := template.New("text").Funcs(templateFuncs()).Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		f.template = tmpl
	}
	return f, nil
}

// Format writes the report as text, ending with a newline.
func (f *TextFormatter) Format(w io.Writer, r Report) error {
	if f.template == nil {
		text := r.Text()
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, err := io.WriteString(w, text)
		return err
	}

	var sb strings.Builder
	if err := f.template.Execute(&sb, r); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"reltime": relativeTime,
		"upper":   strings.ToUpper,
	}
}

// relativeTime returns a human-readable relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
