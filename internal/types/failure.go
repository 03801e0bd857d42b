package types

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies pipeline errors so callers can tell an unreachable
// server from a malformed document from a broken source tree.
type FailureKind string

const (
	FailureUnknown       FailureKind = ""
	FailureTransport     FailureKind = "transport"
	FailureCatalogFormat FailureKind = "catalog-format"
	FailureEntryFormat   FailureKind = "entry-format"
	FailureEmptyCatalog  FailureKind = "empty-catalog"
	FailureLocator       FailureKind = "locator"
	FailureExtractor     FailureKind = "extractor"
	FailureCheckout      FailureKind = "checkout"
)

// PipelineError carries the failure kind and, for per-package failures, the
// package it concerns. Err is usually an errbuilder error.
type PipelineError struct {
	Kind    FailureKind
	Package string
	Err     error
}

func NewPipelineError(kind FailureKind, pkg string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Package: pkg, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("%s error for package %s: %v", e.Kind, e.Package, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err, or FailureUnknown.
func KindOf(err error) FailureKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureUnknown
}

// FieldProblem is one structural defect of a catalog entry.
type FieldProblem struct {
	Field   string
	Problem string
}

// EntryError lists every structural problem found in one catalog entry.
type EntryError struct {
	Package  string
	Problems []FieldProblem
}

func (e *EntryError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Field, p.Problem))
	}
	return fmt.Sprintf("catalog entry %q: %s", e.Package, strings.Join(parts, "; "))
}

// AttachPackage names the package a pipeline error concerns. Errors that are
// not pipeline errors, or already name a package, are returned unchanged.
func AttachPackage(err error, pkg string) error {
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Package != "" {
		return err
	}
	return &PipelineError{Kind: pe.Kind, Package: pkg, Err: pe.Err}
}
