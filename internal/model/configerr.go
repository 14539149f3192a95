package model

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ConfigErrorDetail is a single human readable validation problem.
type ConfigErrorDetail struct {
	Path    string // supervisor.poll_interval
	Code    string // missing_required | unknown_field | conflicting_values | invalid_value | validation_error
	Message string
	Line    int
	Column  int
	Raw     string
}

func (c ConfigErrorDetail) Attr(name string) slog.Attr {
	return slog.Group(
		name,
		slog.String("code", c.Code),
		slog.String("path", c.Path),
		slog.String("message", c.Message),
		slog.Int("line", c.Line),
		slog.Int("column", c.Column),
	)
}

func (c ConfigErrorDetail) String() string {
	if c.Line == 0 {
		return fmt.Sprintf("%s: %s", c.Path, c.Message)
	}
	return fmt.Sprintf("%s (line %d, column %d): %s", c.Path, c.Line, c.Column, c.Message)
}

var (
	reIncomplete = regexp.MustCompile(`(?i)incomplete value`)
	reNotAllowed = regexp.MustCompile(`(?i)not allowed|unknown field`)
	reConflict   = regexp.MustCompile(`(?i)conflicting values|cannot unify|incompatible`)
	reInvalid    = regexp.MustCompile(`(?i)invalid value|does not match|out of bound|empty disjunction`)
)

// ConfigErrors splits a LoadConfig error into per-field details. Errors not
// coming from the schema validation are returned as a single detail.
func ConfigErrors(err error) []ConfigErrorDetail {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []ConfigErrorDetail{{Code: "validation_error", Message: err.Error(), Raw: err.Error()}}
	}

	type key struct {
		path string
		line int
		col  int
	}
	seen := make(map[key]struct{})

	var out []ConfigErrorDetail
	for _, e := range errs {
		format, args := e.Msg()
		raw := fmt.Sprintf(format, args...)
		path := normalizePath(e.Path())

		d := ConfigErrorDetail{
			Path: path,
			Raw:  raw,
		}
		d.Code, d.Message = classify(raw, path)
		for _, p := range cueerrors.Positions(e) {
			if p.Filename() == "" || strings.HasSuffix(p.Filename(), ".cue") {
				continue
			}
			d.Line, d.Column = p.Line(), p.Column()
			break
		}

		k := key{d.Path, d.Line, d.Column}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}

func normalizePath(p []string) string {
	if len(p) == 0 {
		return ""
	}
	// drop the #Config definition
	if strings.HasPrefix(p[0], "#") {
		p = p[1:]
	}
	return strings.Join(p, ".")
}

func classify(raw, path string) (code, msg string) {
	field := last(path)
	switch {
	case reNotAllowed.MatchString(raw):
		return "unknown_field", fmt.Sprintf("field %s is not allowed", field)
	case reIncomplete.MatchString(raw):
		return "missing_required", fmt.Sprintf("field %s is required", field)
	case reConflict.MatchString(raw):
		return "conflicting_values", fmt.Sprintf("conflicting values for %s", field)
	case reInvalid.MatchString(raw):
		return "invalid_value", fmt.Sprintf("field %s has invalid value", field)
	default:
		return "validation_error", raw
	}
}

func last(p string) string {
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		return p[i+1:]
	}
	return p
}
