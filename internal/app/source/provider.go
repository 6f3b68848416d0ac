// Package source provides demo source providers.
package source

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
)

// ErrUnknownSource is returned when no provider knows the requested demo source.
var ErrUnknownSource = errors.New("unknown demo source")

// ResultKind tells what a provider returned.
type ResultKind int

const (
	KindTableOfContents ResultKind = iota
	KindCells
)

// String returns the string representation of the kind.
func (k ResultKind) String() string {
	switch k {
	case KindTableOfContents:
		return "toc"
	case KindCells:
		return "cells"
	default:
		return "unknown"
	}
}

// Result is the payload of a fetch: either a table of contents or demo segments.
type Result struct {
	Kind     ResultKind
	TOC      catalog.TableOfContents
	Segments []segment.Segment
}

// TableOfContentsResult creates a table of contents result.
func TableOfContentsResult(toc catalog.TableOfContents) Result {
	return Result{Kind: KindTableOfContents, TOC: toc}
}

// CellsResult creates a cells result.
func CellsResult(segments []segment.Segment) Result {
	return Result{Kind: KindCells, Segments: segments}
}

// Provider is the interface for demo source providers.
// Different implementations resolve identifiers against different stores
// (e.g., GitHub repositories, local Python files).
type Provider interface {
	// Name returns the provider name (used in config).
	Name() string

	// CanHandle reports whether the provider understands the identifier.
	CanHandle(identifier string) bool

	// Fetch resolves the identifier into a table of contents or segments.
	Fetch(ctx context.Context, identifier string) (Result, error)
}

// unknownSource builds an error that matches ErrUnknownSource but reads as msg.
func unknownSource(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnknownSource)
}
