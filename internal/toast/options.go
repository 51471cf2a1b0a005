package toast

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidOptions is returned when an update is given something other
// than a key/value mapping.
var ErrInvalidOptions = errors.New("options must be a key/value mapping")

// Options is a partial set of notification options. Nil fields are not
// applied.
type Options struct {
	Position         *Position
	AutoClose        *AutoClose
	CanClose         *bool
	ShowProgress     *bool
	PauseOnHover     *bool
	PauseOnFocusLoss *bool
	OnClose          func()
	Style            map[string]string
	Classes          []string
	Text             *string
}

// Ptr returns a pointer to v, for filling Options literals.
func Ptr[T any](v T) *T { return &v }

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		Position:         Ptr(DefaultPosition),
		AutoClose:        Ptr(DefaultAutoClose),
		CanClose:         Ptr(true),
		ShowProgress:     Ptr(true),
		PauseOnHover:     Ptr(true),
		PauseOnFocusLoss: Ptr(true),
		OnClose:          func() {},
	}
}

// Merge returns o with every field set in over replacing o's value.
func (o Options) Merge(over Options) Options {
	out := o
	if over.Position != nil {
		out.Position = over.Position
	}
	if over.AutoClose != nil {
		out.AutoClose = over.AutoClose
	}
	if over.CanClose != nil {
		out.CanClose = over.CanClose
	}
	if over.ShowProgress != nil {
		out.ShowProgress = over.ShowProgress
	}
	if over.PauseOnHover != nil {
		out.PauseOnHover = over.PauseOnHover
	}
	if over.PauseOnFocusLoss != nil {
		out.PauseOnFocusLoss = over.PauseOnFocusLoss
	}
	if over.OnClose != nil {
		out.OnClose = over.OnClose
	}
	if over.Style != nil {
		out.Style = maps.Clone(over.Style)
	}
	if over.Classes != nil {
		out.Classes = slices.Clone(over.Classes)
	}
	if over.Text != nil {
		out.Text = over.Text
	}
	return out
}

// Empty reports whether no option is set.
func (o Options) Empty() bool {
	return o.Position == nil && o.AutoClose == nil && o.CanClose == nil &&
		o.ShowProgress == nil && o.PauseOnHover == nil && o.PauseOnFocusLoss == nil &&
		o.OnClose == nil && o.Style == nil && o.Classes == nil && o.Text == nil
}

// ParseOptions converts a free-form mapping into Options. Accepted inputs
// are Options, *Options, map[string]any, map[string]string and map[any]any.
// Keys may be camelCase, snake_case or kebab-case. Unknown keys and values
// of the wrong shape are skipped and reported in the returned list of
// ignored keys.
func ParseOptions(v any) (Options, []string, error) {
	var entries map[string]any
	switch m := v.(type) {
	case Options:
		return m, nil, nil
	case *Options:
		if m == nil {
			return Options{}, nil, ErrInvalidOptions
		}
		return *m, nil, nil
	case map[string]any:
		entries = m
	case map[string]string:
		entries = make(map[string]any, len(m))
		for k, val := range m {
			entries[k] = val
		}
	case map[any]any:
		entries = make(map[string]any, len(m))
		for k, val := range m {
			entries[fmt.Sprint(k)] = val
		}
	default:
		return Options{}, nil, fmt.Errorf("%w, got %T", ErrInvalidOptions, v)
	}

	var opts Options
	var ignored []string
	for key, val := range entries {
		if !opts.set(normalizeKey(key), val) {
			ignored = append(ignored, key)
		}
	}
	slices.Sort(ignored)
	return opts, ignored, nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}

// set applies one normalized key. It reports false for unknown keys and
// malformed values.
func (o *Options) set(key string, val any) bool {
	switch key {
	case "position":
		s, ok := val.(string)
		if !ok {
			return false
		}
		o.Position = Ptr(Position(s))
	case "autoclose":
		a, ok := parseAutoClose(val)
		if !ok {
			return false
		}
		o.AutoClose = &a
	case "canclose":
		return setBool(&o.CanClose, val)
	case "showprogress":
		return setBool(&o.ShowProgress, val)
	case "pauseonhover":
		return setBool(&o.PauseOnHover, val)
	case "pauseonfocusloss":
		return setBool(&o.PauseOnFocusLoss, val)
	case "onclose":
		fn, ok := val.(func())
		if !ok {
			return false
		}
		o.OnClose = fn
	case "style":
		style, ok := parseStyle(val)
		if !ok {
			return false
		}
		o.Style = style
	case "classes", "class":
		classes, ok := parseClasses(val)
		if !ok {
			return false
		}
		o.Classes = classes
	case "text", "message":
		if val == nil {
			return false
		}
		o.Text = Ptr(fmt.Sprint(val))
	default:
		return false
	}
	return true
}

func setBool(dst **bool, val any) bool {
	switch b := val.(type) {
	case bool:
		*dst = Ptr(b)
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false
		}
		*dst = Ptr(parsed)
	default:
		return false
	}
	return true
}

// parseAutoClose accepts false (disabled), integer milliseconds, duration
// strings such as "5s", and time.Duration values.
func parseAutoClose(val any) (AutoClose, bool) {
	switch v := val.(type) {
	case bool:
		if v {
			return 0, false
		}
		return AutoCloseDisabled, true
	case time.Duration:
		return AutoClose(v), true
	case AutoClose:
		return v, true
	case int:
		return AutoClose(time.Duration(v) * time.Millisecond), true
	case int32:
		return AutoClose(time.Duration(v) * time.Millisecond), true
	case int64:
		return AutoClose(time.Duration(v) * time.Millisecond), true
	case uint32:
		return AutoClose(time.Duration(v) * time.Millisecond), true
	case uint64:
		return AutoClose(time.Duration(v) * time.Millisecond), true
	case float64:
		return AutoClose(time.Duration(v * float64(time.Millisecond))), true
	case string:
		if v == "false" {
			return AutoCloseDisabled, true
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return AutoClose(time.Duration(ms) * time.Millisecond), true
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, false
		}
		return AutoClose(d), true
	}
	return 0, false
}

func parseStyle(val any) (map[string]string, bool) {
	switch m := val.(type) {
	case map[string]string:
		return maps.Clone(m), true
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = fmt.Sprint(v)
		}
		return out, true
	case map[any]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = fmt.Sprint(v)
		}
		return out, true
	}
	return nil, false
}

func parseClasses(val any) ([]string, bool) {
	switch v := val.(type) {
	case string:
		return strings.Fields(v), true
	case []string:
		return slices.Clone(v), true
	case []any:
		out := make([]string, 0, len(v))
		for _, c := range v {
			s, ok := c.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
