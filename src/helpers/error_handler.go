package helpers

import (
	"fmt"
	"strings"
	"time"

	"marketpulse/src/logger"
)

// MarketPulseError is the base error type every categorized error wraps.
type MarketPulseError struct {
	Message string
	Cause   error
}

func (e *MarketPulseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MarketPulseError) Unwrap() error {
	return e.Cause
}

// ConfigurationError wraps a startup configuration failure.
type ConfigurationError struct{ MarketPulseError }

// StorageError wraps an audit-trail read/write failure.
type StorageError struct{ MarketPulseError }

// ValidationError wraps a rejected input.
type ValidationError struct{ MarketPulseError }

// RetryWithBackoff attempts operation up to maxRetries times with exponential
// backoff, returning the last error if every attempt fails.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		fmt.Printf("warning: attempt %d/%d failed for %s: %v, retrying in %v\n", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}

// ErrorHandler centralizes retry-with-categorization and error-count
// tracking. None of the service's background loops (storage writer, feed
// tick, reaper tick) route their errors through it.
type ErrorHandler struct {
	Logger                 *logger.Logger
	ErrorCount             int
	MaxErrorsBeforeRestart int
}

// NewErrorHandler binds an ErrorHandler to log, which must already be
// constructed (ErrorHandler never builds its own logger).
func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		Logger:                 log,
		MaxErrorsBeforeRestart: 10,
	}
}

func (e *ErrorHandler) ResetErrorCount() {
	e.ErrorCount = 0
}

// ExecuteWithRetry runs fn up to maxRetries times in total, and wraps the final
// failure in a StorageError or ConfigurationError depending on the operation
// name, or a plain MarketPulseError otherwise.
func (e *ErrorHandler) ExecuteWithRetry(operation string, fn func() (interface{}, error), maxRetries int) (interface{}, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			if e.ErrorCount > 0 {
				e.ErrorCount--
			}
			return res, nil
		}

		if attempt == maxRetries-1 {
			e.ErrorCount++
			e.Logger.Error("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)

			lowerOp := strings.ToLower(operation)
			switch {
			case strings.Contains(lowerOp, "storage") || strings.Contains(lowerOp, "save") || strings.Contains(lowerOp, "insert"):
				return nil, &StorageError{MarketPulseError{Message: fmt.Sprintf("%s failed", operation), Cause: err}}
			case strings.Contains(lowerOp, "config") || strings.Contains(lowerOp, "load"):
				return nil, &ConfigurationError{MarketPulseError{Message: fmt.Sprintf("%s failed", operation), Cause: err}}
			default:
				return nil, &MarketPulseError{Message: fmt.Sprintf("%s failed", operation), Cause: err}
			}
		}

		e.Logger.Warning("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)
		time.Sleep(time.Duration(1<<attempt) * time.Second)
	}

	return nil, &MarketPulseError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries)}
}

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.Logger.Error("error in %s: %v", context, err)
	}
}
