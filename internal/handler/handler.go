// Package handler collects diagnostics produced while parsing, laying
// out, or linting a .fd document and renders them with resolved
// line/column positions.
package handler

import (
	"errors"
	"fmt"

	"github.com/fastdraft/fd/internal/loc"
)

// RangedError is any error that knows where in the source it happened.
// Parser, graph, and lint errors all implement this so the Handler can
// resolve a byte offset to a line/column lazily, on demand, rather than
// at construction time.
type RangedError struct {
	Range loc.Range
	Kind  loc.DiagnosticKind
	Err   error
}

func (e *RangedError) Error() string { return e.Err.Error() }
func (e *RangedError) Unwrap() error { return e.Err }

func NewRangedError(kind loc.DiagnosticKind, r loc.Range, format string, a ...interface{}) *RangedError {
	return &RangedError{Range: r, Kind: kind, Err: fmt.Errorf(format, a...)}
}

// Handler buckets diagnostics by severity: errors block, warnings
// don't.
type Handler struct {
	sourcetext string
	filename   string
	lines      *loc.LineOffsetTable
	errors     []error
	warnings   []error
	infos      []error
	hints      []error
}

func New(sourcetext, filename string) *Handler {
	return &Handler{
		sourcetext: sourcetext,
		filename:   filename,
		lines:      loc.NewLineOffsetTable(sourcetext),
		errors:     make([]error, 0),
		warnings:   make([]error, 0),
		infos:      make([]error, 0),
		hints:      make([]error, 0),
	}
}

func (h *Handler) HasErrors() bool { return len(h.errors) > 0 }

func (h *Handler) AppendError(err error)   { h.errors = append(h.errors, err) }
func (h *Handler) AppendWarning(err error) { h.warnings = append(h.warnings, err) }
func (h *Handler) AppendInfo(err error)    { h.infos = append(h.infos, err) }
func (h *Handler) AppendHint(err error)    { h.hints = append(h.hints, err) }

func (h *Handler) Errors() []loc.DiagnosticMessage   { return toMessages(h, h.errors, loc.ErrorType) }
func (h *Handler) Warnings() []loc.DiagnosticMessage { return toMessages(h, h.warnings, loc.WarningType) }

// Diagnostics returns every collected message, errors first. A pass
// surfaces all of its errors at once rather than short-circuiting on
// the first one.
func (h *Handler) Diagnostics() []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0, len(h.errors)+len(h.warnings)+len(h.infos)+len(h.hints))
	msgs = append(msgs, toMessages(h, h.errors, loc.ErrorType)...)
	msgs = append(msgs, toMessages(h, h.warnings, loc.WarningType)...)
	msgs = append(msgs, toMessages(h, h.infos, loc.InformationType)...)
	msgs = append(msgs, toMessages(h, h.hints, loc.HintType)...)
	return msgs
}

func toMessages(h *Handler, errs []error, severity loc.DiagnosticSeverity) []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, errorToMessage(h, severity, err))
		}
	}
	return msgs
}

func errorToMessage(h *Handler, severity loc.DiagnosticSeverity, err error) loc.DiagnosticMessage {
	var ranged *RangedError
	if errors.As(err, &ranged) {
		pos := h.lines.Position(ranged.Range.Loc.Start)
		return loc.DiagnosticMessage{
			Text:     ranged.Error(),
			Code:     ranged.Kind,
			Severity: severity,
			Location: &loc.DiagnosticLocation{
				File:   h.filename,
				Line:   pos.Line,
				Column: pos.Column,
				Length: ranged.Range.Len,
			},
		}
	}
	return loc.DiagnosticMessage{Text: err.Error(), Severity: severity}
}
