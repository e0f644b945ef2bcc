// Package errors provides the error taxonomy shared by the Hoots workers and
// its mapping onto BPMN errors and job retries.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode is a stable, machine readable error identifier. The same value is
// used as the BPMN error code thrown to the process engine.
type ErrorCode string

const (
	ErrCodeParseError ErrorCode = "PARSE_ERROR"

	// Matching
	ErrCodePreferencesNotFound ErrorCode = "PREFERENCES_NOT_FOUND"
	ErrCodeMentorLookupFailed  ErrorCode = "MENTOR_LOOKUP_FAILED"

	// Goals
	ErrCodeGoalNotFound     ErrorCode = "GOAL_NOT_FOUND"
	ErrCodeGoalLookupFailed ErrorCode = "GOAL_LOOKUP_FAILED"

	// Applications
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeDuplicateApplication        ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeMentorNotAccepting          ErrorCode = "MENTOR_NOT_ACCEPTING"
	ErrCodeDatabaseInsertFailed        ErrorCode = "DATABASE_INSERT_FAILED"

	// Subscriptions
	ErrCodeSubscriptionInvalid     ErrorCode = "SUBSCRIPTION_INVALID"
	ErrCodeSubscriptionExpired     ErrorCode = "SUBSCRIPTION_EXPIRED"
	ErrCodeSubscriptionCheckFailed ErrorCode = "SUBSCRIPTION_CHECK_FAILED"

	// Notifications
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeTemplateNotFound       ErrorCode = "TEMPLATE_NOT_FOUND"

	// Meetings
	ErrCodeMeetingRoomFailed ErrorCode = "MEETING_ROOM_FAILED"
	ErrCodeMeetingInvalid    ErrorCode = "MEETING_INVALID"

	// Search
	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	// Generic
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule    ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeAuthentication  ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

var knownCodes = map[ErrorCode]struct{}{
	ErrCodeParseError: {}, ErrCodePreferencesNotFound: {}, ErrCodeMentorLookupFailed: {},
	ErrCodeGoalNotFound: {}, ErrCodeGoalLookupFailed: {},
	ErrCodeApplicationValidationFailed: {}, ErrCodeDuplicateApplication: {}, ErrCodeMentorNotAccepting: {}, ErrCodeDatabaseInsertFailed: {},
	ErrCodeSubscriptionInvalid: {}, ErrCodeSubscriptionExpired: {}, ErrCodeSubscriptionCheckFailed: {},
	ErrCodeNotificationSendFailed: {}, ErrCodeTemplateNotFound: {},
	ErrCodeMeetingRoomFailed: {}, ErrCodeMeetingInvalid: {},
	ErrCodeSearchQueryFailed: {}, ErrCodeSearchTimeout: {}, ErrCodeIndexNotFound: {},
	ErrCodeExternalService: {}, ErrCodeTimeout: {}, ErrCodeNotFound: {}, ErrCodeBusinessRule: {}, ErrCodeAuthentication: {}, ErrCodeInternal: {},
}

// IsKnownCode reports whether code is part of the taxonomy above.
func IsKnownCode(code ErrorCode) bool {
	_, ok := knownCodes[code]
	return ok
}

// StandardError is the structured error every worker returns from execute.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// BPMNError is what gets thrown to (or failed back into) the process engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the process variables set alongside the error.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse job variables", err.Error(), false)
}

func NewPreferencesNotFoundError(userID string) *StandardError {
	return newError(ErrCodePreferencesNotFound, "User preferences not found", "userId: "+userID, false)
}

func NewMentorLookupFailedError(err error) *StandardError {
	return newError(ErrCodeMentorLookupFailed, "Failed to load mentor candidates", err.Error(), true)
}

func NewGoalNotFoundError(goalID string) *StandardError {
	return newError(ErrCodeGoalNotFound, "Goal not found", "goalId: "+goalID, false)
}

func NewGoalLookupFailedError(err error) *StandardError {
	return newError(ErrCodeGoalLookupFailed, "Failed to load goal milestones", err.Error(), true)
}

func NewApplicationValidationFailedError(details string) *StandardError {
	return newError(ErrCodeApplicationValidationFailed, "Application data validation failed", details, false)
}

func NewDuplicateApplicationError(menteeID, mentorID string) *StandardError {
	return newError(ErrCodeDuplicateApplication, "An open application already exists",
		fmt.Sprintf("menteeId: %s, mentorId: %s", menteeID, mentorID), false)
}

func NewMentorNotAcceptingError(mentorID string) *StandardError {
	return newError(ErrCodeMentorNotAccepting, "Mentor is not accepting mentees", "mentorId: "+mentorID, false)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

func NewSubscriptionInvalidError(details string) *StandardError {
	return newError(ErrCodeSubscriptionInvalid, "Invalid or insufficient subscription", details, false)
}

func NewSubscriptionExpiredError(details string) *StandardError {
	return newError(ErrCodeSubscriptionExpired, "Subscription has expired", details, false)
}

func NewSubscriptionCheckFailedError(err error) *StandardError {
	return newError(ErrCodeSubscriptionCheckFailed, "Database error during subscription check", err.Error(), true)
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err), true)
}

func NewTemplateNotFoundError(notificationType string) *StandardError {
	return newError(ErrCodeTemplateNotFound, "No template for notification type", "type: "+notificationType, false)
}

func NewMeetingRoomFailedError(err error) *StandardError {
	return newError(ErrCodeMeetingRoomFailed, "Video room provisioning failed", err.Error(), true)
}

func NewMeetingInvalidError(details string) *StandardError {
	return newError(ErrCodeMeetingInvalid, "Meeting request is invalid", details, false)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, err), true)
}

func NewSearchTimeoutError(index string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout", "index: "+index, true)
}

func NewIndexNotFoundError(index string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Elasticsearch index not found", "index: "+index, false)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRule, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(resource, details string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

// GetRetryCount returns how many engine retries a code is allowed.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeMentorLookupFailed,
		ErrCodeGoalLookupFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSubscriptionCheckFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeMeetingRoomFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeExternalService:
		return 3
	case ErrCodeSearchTimeout, ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// IsRetryableErrorCode reports whether a code is retried by the engine.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// ConvertToBPMNError maps a StandardError onto the engine representation.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := 0
	if stdErr.Retryable {
		retries = GetRetryCount(stdErr.Code)
	}

	vars := map[string]interface{}{
		"errorCategory": GetErrorCategory(stdErr.Code),
		"timestamp":     stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// GetErrorCategory groups codes for dashboards and logs.
func GetErrorCategory(code ErrorCode) string {
	c := string(code)
	switch {
	case strings.HasPrefix(c, "SUBSCRIPTION"), code == ErrCodeAuthentication:
		return "BILLING"
	case strings.Contains(c, "MENTOR"), strings.Contains(c, "PREFERENCES"):
		return "MATCHING"
	case strings.HasPrefix(c, "GOAL"):
		return "GOALS"
	case strings.Contains(c, "APPLICATION"):
		return "APPLICATION"
	case strings.HasPrefix(c, "MEETING"):
		return "MEETING"
	case strings.Contains(c, "NOTIFICATION"), strings.Contains(c, "TEMPLATE"):
		return "NOTIFICATION"
	case strings.Contains(c, "SEARCH"), strings.Contains(c, "INDEX"):
		return "SEARCH"
	case strings.Contains(c, "DATABASE"):
		return "DATABASE"
	case code == ErrCodeParseError:
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
