// Package errors provides the error handling and warning system used across
// the training callback layer. It builds on cockroachdb/errors for stack
// traces and adds structured error types that marshal cleanly into zerolog
// events.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("xgboost-warning: %v\n", w)
	}
	// zerolog sink, injected lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler installs a library-wide warning handler. Warnings are
// non-fatal notes (for example, the early-stopping callback picking a default
// metric); the handler controls where they end up.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop all warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings through a zerolog-backed sink.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. The zerolog sink wins when configured; otherwise the
// plain handler runs.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// DefaultMetricWarning is emitted when early stopping has to pick a metric
// because several were passed and none was requested explicitly.
type DefaultMetricWarning struct {
	Metric string
}

func (w *DefaultMetricWarning) Error() string {
	return fmt.Sprintf("multiple eval metrics have been passed: '%s' will be used for early stopping", w.Metric)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *DefaultMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("type", "DefaultMetricWarning")
}

// NewDefaultMetricWarning creates a new DefaultMetricWarning.
func NewDefaultMetricWarning(metric string) *DefaultMetricWarning {
	return &DefaultMetricWarning{Metric: metric}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// ValidationError reports an invalid configuration value. These are
// programmer mistakes caught at construction or first use, never transient
// conditions.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("xgboost: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports a precondition failure: a required piece of training
// context is missing or malformed when an operation first runs.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("xgboost: %s: %s", e.Op, e.Message)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("message", e.Message).
		Str("type", "ValueError")
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ConsistencyError reports a divergence between internally tracked state and
// externally persisted state beyond the allowed floating-point tolerance.
type ConsistencyError struct {
	Op        string
	Internal  float64
	External  float64
	Tolerance float64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("xgboost: %s: internal value %.17g diverges from persisted value %.17g (tolerance %g)",
		e.Op, e.Internal, e.External, e.Tolerance)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ConsistencyError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("internal", e.Internal).
		Float64("external", e.External).
		Float64("tolerance", e.Tolerance).
		Str("type", "ConsistencyError")
}

// NewConsistencyError creates a ConsistencyError with a stack trace attached.
func NewConsistencyError(op string, internal, external, tolerance float64) error {
	err := &ConsistencyError{Op: op, Internal: internal, External: external, Tolerance: tolerance}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to an error.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData reports that an operation received no data.
	ErrEmptyData = New("empty data")

	// ErrNoBooster reports that a callback requires a booster handle and the
	// training context carries none.
	ErrNoBooster = New("no booster found in training context")
)
