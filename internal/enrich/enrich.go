// Package enrich computes the contextual fields merged into every document.
package enrich

import (
	"context"
	"reflect"
	"strings"

	"logtarget/internal/document"
	"logtarget/internal/environ"
)

const KeyUserID = "userId"

type Options struct {
	// Static is the configured literal context.
	Static *document.Document
	// LogUser adds "userId" when the environment knows the current user.
	LogUser bool
	// LogVars names environment variables to copy into the context.
	LogVars []string
}

type Enricher struct {
	opts Options
	env  environ.Provider
}

// New returns an Enricher reading ambient state from env. A nil env behaves
// like environ.Nop.
func New(opts Options, env environ.Provider) *Enricher {
	if env == nil {
		env = environ.Nop{}
	}
	return &Enricher{opts: opts, env: env}
}

// Context builds a fresh context document: static fields, then "userId",
// then each variable with a non-empty value under its name without leading
// underscores. An unknown user is left out.
func (e *Enricher) Context(ctx context.Context) *document.Document {
	out := e.opts.Static.Clone()

	if e.opts.LogUser {
		if id, ok := e.env.UserID(ctx); ok && id != "" {
			out.Set(KeyUserID, id)
		}
	}

	for _, name := range e.opts.LogVars {
		v, ok := e.env.Var(ctx, name)
		if !ok || IsEmpty(v) {
			continue
		}
		key := strings.TrimLeft(name, "_")
		if key == "" {
			key = name
		}
		out.Set(key, v)
	}
	return out
}

// IsEmpty reports whether v carries no information: nil, zero scalars, the
// string "0" and empty collections.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || x == "0"
	case bool:
		return !x
	case *document.Document:
		return x.Len() == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}
