// Package modules resolves include/import requests against a module
// registry. The evaluator only ever sees the dispatch hook; the registry
// backends (an embedded SQLite file, or a shared Postgres database) and the
// signature check in front of them live here, on the host side.
package modules

import (
	"context"
	"fmt"

	"github.com/vivjson/vivjson/internal/security"
	"github.com/vivjson/vivjson/value"
)

// RunFunc evaluates a resolved module source (medium names it in error
// locations) and returns the module's value. The CLI passes a closure over
// the embedding API so this package does not depend on it.
type RunFunc func(source, medium string) (*value.Value, error)

// Resolver fetches a module's source text and its provenance signature by
// name.
type Resolver interface {
	Resolve(ctx context.Context, name string) (source string, signature []byte, err error)
}

// Loader adapts a Resolver (plus optional signature verification and
// caching) to the evaluator's include/import dispatch hook: it resolves the
// named module, verifies it, evaluates its source in isolation, and hands
// back the module's public projection as a value.
type Loader struct {
	resolver Resolver
	verifier *security.Verifier
	cache    SourceCache
	run      RunFunc
}

// SourceCache is the subset of the registry cache a Loader needs. It is an
// interface so the Redis-backed cache stays optional.
type SourceCache interface {
	Get(ctx context.Context, name string) (source string, signature []byte, ok bool)
	Put(ctx context.Context, name, source string, signature []byte)
}

// NewLoader wires a Loader. verifier and cache may be nil; run evaluates a
// resolved source to a module value.
func NewLoader(resolver Resolver, verifier *security.Verifier, cache SourceCache, run RunFunc) *Loader {
	return &Loader{resolver: resolver, verifier: verifier, cache: cache, run: run}
}

// Resolve implements evaluator.ModuleResolver. The first argument names the
// module to load; resolution failures report false, which the evaluator
// turns into an error at the call site.
func (l *Loader) Resolve(keyword string, args []*value.Value) (*value.Value, bool) {
	if len(args) < 1 || args[0].Kind != value.String {
		return nil, false
	}
	name := args[0].S

	ctx := context.Background()
	source, signature, err := l.fetch(ctx, name)
	if err != nil {
		return nil, false
	}
	if l.verifier != nil {
		if err := l.verifier.Verify(name, source, signature); err != nil {
			return nil, false
		}
	}

	v, err := l.run(source, name)
	if err != nil {
		return nil, false
	}
	return v, true
}

func (l *Loader) fetch(ctx context.Context, name string) (string, []byte, error) {
	if l.cache != nil {
		if source, signature, ok := l.cache.Get(ctx, name); ok {
			return source, signature, nil
		}
	}
	source, signature, err := l.resolver.Resolve(ctx, name)
	if err != nil {
		return "", nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	if l.cache != nil {
		l.cache.Put(ctx, name, source, signature)
	}
	return source, signature, nil
}
