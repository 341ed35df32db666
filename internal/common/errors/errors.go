// internal/common/errors/errors.go
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"

	ErrCodeOpenAIKeyMissing ErrorCode = "OPENAI_KEY_MISSING"

	ErrCodeAssistantRunFailed   ErrorCode = "ASSISTANT_RUN_FAILED"
	ErrCodeAssistantTimeout     ErrorCode = "ASSISTANT_TIMEOUT"
	ErrCodeResponseParseFailed  ErrorCode = "RESPONSE_PARSE_FAILED"
	ErrCodeChatCompletionFailed ErrorCode = "CHAT_COMPLETION_FAILED"
	ErrCodeGenerationFailed     ErrorCode = "GENERATION_FAILED"

	ErrCodeRedisUnavailable    ErrorCode = "REDIS_UNAVAILABLE"
	ErrCodeHistoryWriteFailed  ErrorCode = "HISTORY_WRITE_FAILED"
	ErrCodeAnalyticsSendFailed ErrorCode = "ANALYTICS_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable request validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Missing required fields",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOpenAIKeyMissingError creates a non-retryable configuration error.
// This is the only error class that should alert an operator.
func NewOpenAIKeyMissingError() *StandardError {
	return &StandardError{
		Code:      ErrCodeOpenAIKeyMissing,
		Message:   "OpenAI API key not configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantRunFailedError creates a recoverable upstream error. The
// orchestrator recovers by moving to the next identifier in the chain.
func NewAssistantRunFailedError(assistantID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistantRunFailed,
		Message:   "Assistant run failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"assistantId": assistantID},
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantTimeoutError creates a recoverable timeout error.
func NewAssistantTimeoutError(assistantID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistantTimeout,
		Message:   "Assistant run exceeded its timeout budget",
		Retryable: true,
		Metadata:  map[string]interface{}{"assistantId": assistantID},
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseParseFailedError creates a recoverable parse error.
func NewResponseParseFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseParseFailed,
		Message:   "Upstream response was not valid JSON",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChatCompletionFailedError creates an error for the second-tier backend.
func NewChatCompletionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChatCompletionFailed,
		Message:   "Chat completion failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError is returned to the caller once every tier in the
// fallback chain has been exhausted. Upstream details stay server-side.
func NewGenerationFailedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "generation failed",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a client-facing throttling error.
func NewRateLimitedError(identifier string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many requests",
		Retryable: true,
		Metadata:  map[string]interface{}{"identifier": identifier},
		Timestamp: time.Now().UTC(),
	}
}

// IsRecoverable reports whether the orchestrator may continue down the
// fallback chain after this error.
func IsRecoverable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
