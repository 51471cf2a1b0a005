package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// Formatter writes records for output.
type Formatter interface {
	Format(w io.Writer, records []Record) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatPlain FormatType = "plain"
)

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string // Custom text/template for plain format, run per record
	ShowIndex  bool   // Show 1-based index prefix
	ShowTime   bool   // Show relative close time
	ShowApp    bool   // Show app name
	BodyMaxLen int    // Maximum body length (0 = unlimited)
}

// DefaultFormatterOptions returns the options used by the history command.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowTime:   true,
		ShowApp:    true,
		BodyMaxLen: 80,
	}
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	default:
		return nil, fmt.Errorf("unknown format %q (use plain or json)", format)
	}
}

// JSONFormatter writes records as an indented JSON array.
type JSONFormatter struct{}

// Format writes records as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// PlainFormatter writes records as text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
	now      func() time.Time
}

// templateData is passed to custom templates.
type templateData struct {
	Index int
	*Record
	RelativeTime string
}

// NewPlainFormatter creates a plain text formatter.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{opts: opts, now: time.Now}
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template: %w", err)
		}
		f.template = tmpl
	}
	return f, nil
}

// Format writes records as plain text.
func (f *PlainFormatter) Format(w io.Writer, records []Record) error {
	for i := range records {
		if err := f.formatRecord(w, i+1, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatRecord(w io.Writer, index int, r *Record) error {
	rel := humanize.RelTime(r.ClosedTime(), f.now(), "ago", "from now")

	if f.template != nil {
		if err := f.template.Execute(w, templateData{Index: index, Record: r, RelativeTime: rel}); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	if f.opts.ShowApp && r.AppName != "" {
		fmt.Fprintf(&sb, "<%s> ", r.AppName)
	}
	sb.WriteString(r.Summary)
	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " (%s, %s)", r.Reason, rel)
	}
	sb.WriteString("\n")

	if r.Body != "" {
		body := strings.Join(strings.Fields(r.Body), " ")
		if f.opts.BodyMaxLen > 0 {
			body = r.BodyTruncated(f.opts.BodyMaxLen)
		}
		sb.WriteString("    " + body + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			if maxLen <= 0 {
				return s
			}
			r := Record{Body: s}
			return r.BodyTruncated(maxLen)
		},
		"urgencyIcon": func(urgency int) string {
			switch urgency {
			case UrgencyLow:
				return "L"
			case UrgencyCritical:
				return "!"
			default:
				return "-"
			}
		},
	}
}
