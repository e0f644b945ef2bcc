package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Error(t *testing.T) {
	err := NewGoalNotFoundError("goal-1")
	assert.Equal(t, "GOAL_NOT_FOUND: Goal not found (goalId: goal-1)", err.Error())

	bare := &StandardError{Code: ErrCodeInternal, Message: "boom"}
	assert.Equal(t, "INTERNAL_ERROR: boom", bare.Error())
}

func TestAsStandardError_Unwraps(t *testing.T) {
	wrapped := fmt.Errorf("loading candidates: %w", NewMentorLookupFailedError(fmt.Errorf("conn reset")))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeMentorLookupFailed, stdErr.Code)
	assert.True(t, HasCode(wrapped, ErrCodeMentorLookupFailed))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeMentorLookupFailed))
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedRetries int
		expectedCat     string
	}{
		{"retryable lookup", NewMentorLookupFailedError(fmt.Errorf("db down")), 3, "MATCHING"},
		{"business error", NewDuplicateApplicationError("a", "b"), 0, "APPLICATION"},
		{"search timeout", NewSearchTimeoutError("mentors"), 2, "SEARCH"},
		{"subscription expired", NewSubscriptionExpiredError("ended"), 0, "BILLING"},
		{"meeting room", NewMeetingRoomFailedError(fmt.Errorf("503")), 3, "MEETING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err.WithMetadata("userId", "u1"))

			assert.Equal(t, string(tt.err.Code), bpmnErr.Code)
			assert.Equal(t, tt.expectedRetries, bpmnErr.Retries)

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["errorCode"])
			assert.Equal(t, tt.expectedCat, vars["errorCategory"])
			assert.Equal(t, "u1", vars["userId"])
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		err        *StandardError
		jobRetries int32
		expected   Resolution
	}{
		{"non retryable throws", NewGoalNotFoundError("g"), 3, Resolution{Throw: true}},
		{"retryable with budget", NewGoalLookupFailedError(fmt.Errorf("x")), 5, Resolution{Retries: 3}},
		{"retryable capped by job", NewGoalLookupFailedError(fmt.Errorf("x")), 2, Resolution{Retries: 1}},
		{"retryable on last attempt throws", NewGoalLookupFailedError(fmt.Errorf("x")), 1, Resolution{Throw: true}},
		{"retryable flag off", &StandardError{Code: ErrCodeMentorLookupFailed}, 3, Resolution{Throw: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.err, tt.jobRetries))
		})
	}
}

func TestNormalize(t *testing.T) {
	original := NewIndexNotFoundError("mentors")
	assert.Same(t, original, Normalize(original))

	timeout := Normalize(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeTimeout, timeout.Code)
	assert.True(t, timeout.Retryable)

	other := Normalize(fmt.Errorf("surprise"))
	assert.Equal(t, ErrCodeInternal, other.Code)
	assert.False(t, other.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "GOALS", GetErrorCategory(ErrCodeGoalNotFound))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeTemplateNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseError))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsKnownCode(t *testing.T) {
	assert.True(t, IsKnownCode(ErrCodeMeetingInvalid))
	assert.True(t, IsKnownCode("SEARCH_TIMEOUT"))
	assert.False(t, IsKnownCode("UNKNOWN_ERROR"))
}
