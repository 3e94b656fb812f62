// Package services holds the import and aggregation business logic: the
// ingestion pipeline, the records recompute, the quota limiter, the audit
// logger and the orchestrator that chains them into one run.
//
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
// Translation into HTTP status codes happens in the handler layer.
package services

import "errors"

var (
	// ErrForbiddenRole is returned when the caller's role may not trigger a run.
	ErrForbiddenRole = errors.New("role not allowed to trigger imports")

	// ErrQuotaExceeded is returned when a full run would exceed the caller's
	// monthly quota. It is wrapped with the used/allowed counts.
	ErrQuotaExceeded = errors.New("monthly import quota exceeded")

	// ErrUnknownMode is returned for a run mode other than full or recalculate.
	ErrUnknownMode = errors.New("unknown import mode")

	// ErrRunInProgress is returned when another run holds the engine.
	ErrRunInProgress = errors.New("an import run is already in progress")

	// ErrSwimmerNotFound indicates no active swimmer carries the requested IUF.
	ErrSwimmerNotFound = errors.New("swimmer not found")
)
