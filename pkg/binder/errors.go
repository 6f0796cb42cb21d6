package binder

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrBinderNotApplicable  = errors.New("binder not applicable")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidJSON          = errors.New("invalid JSON body")
	ErrEmptyBody            = errors.New("empty request body")
	ErrBodyTooLarge         = errors.New("request body too large")
)

// ValidationError maps JSON field paths to failed rule messages.
type ValidationError map[string][]string

func (e ValidationError) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f][0]))
	}
	return "validation error: " + strings.Join(parts, ", ")
}
