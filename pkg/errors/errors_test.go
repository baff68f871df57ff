// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"profile not found", errors.ErrCodeProfileNotFound, "profile prf_42 not found"},
		{"invalid input", errors.ErrCodeScoreInputInvalid, "citations must not be negative"},
		{"rate limit", errors.ErrCodeTooManyRequests, "too many requests"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestNew_StackIsPopulated(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeInternal, "test")
	require.NotNil(t, ae)
	assert.Contains(t, ae.Stack, "errors_test.go")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.ErrCodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("root DB error")
	wrapped := errors.Wrap(root, errors.ErrCodeDatabaseError, "connection failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeDatabaseError, wrapped.Code)
	assert.Equal(t, "connection failed", wrapped.Message)
	assert.Equal(t, root, wrapped.Cause)
}

func TestWrap_UnwrapReturnsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("original")
	ae := errors.Wrap(cause, errors.ErrCodeCacheError, "cache miss")

	unwrapped := stderrors.Unwrap(ae)
	assert.Equal(t, cause, unwrapped)
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeProfileNotFound, "not found")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeProfileNotFound, outer.Code,
		"Wrap with CodeUnknown should inherit the inner AppError's code")
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeProfileNotFound, "not found")
	outer := errors.Wrap(inner, errors.ErrCodeInternal, "unexpected state")

	assert.Equal(t, errors.ErrCodeInternal, outer.Code,
		"explicit non-Unknown code must override the inner code")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestError formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithoutDetail(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeNotFound, "resource missing")
	assert.Equal(t, "[COMMON_005] resource missing", ae.Error())
}

func TestError_FormatWithDetail(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeNotFound, "resource missing").WithDetail("id=prf_42")
	assert.Equal(t, "[COMMON_005] resource missing: id=prf_42", ae.Error())
}

func TestError_WorksWithFmtVerbs(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeConflict, "duplicate")
	formatted := fmt.Sprintf("got: %v", ae)
	assert.True(t, strings.HasPrefix(formatted, "got: [COMMON_006]"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builders
// ─────────────────────────────────────────────────────────────────────────────

func TestWithDetail_ReturnsCopy(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeInternal, "boom")
	detailed := base.WithDetail("request_id=abc")

	assert.Empty(t, base.Detail, "original must not be mutated")
	assert.Equal(t, "request_id=abc", detailed.Detail)
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("ignored"))
}

func TestWithCause_AttachesCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("io failure")
	ae := errors.Internal("export failed").WithCause(cause)

	assert.Equal(t, cause, stderrors.Unwrap(ae))
}

// ─────────────────────────────────────────────────────────────────────────────
// Inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_FindsCodeThroughChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeEvaluationNotFound, "missing")
	mid := errors.Wrap(inner, errors.ErrCodeDatabaseError, "query failed")
	outer := fmt.Errorf("handler: %w", mid)

	assert.True(t, errors.IsCode(outer, errors.ErrCodeEvaluationNotFound))
	assert.True(t, errors.IsCode(outer, errors.ErrCodeDatabaseError))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeCacheError))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	})

	t.Run("app error", func(t *testing.T) {
		t.Parallel()
		ae := errors.New(errors.ErrCodeProfileInvalid, "bad profile")
		assert.Equal(t, errors.ErrCodeProfileInvalid, errors.GetCode(ae))
	})
}

func TestIsNotFound_CoversDomainVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"generic not found", errors.NotFound("x"), true},
		{"profile not found", errors.New(errors.ErrCodeProfileNotFound, "x"), true},
		{"evaluation not found", errors.New(errors.ErrCodeEvaluationNotFound, "x"), true},
		{"wrapped profile not found", errors.Wrap(errors.New(errors.ErrCodeProfileNotFound, "x"), errors.ErrCodeDatabaseError, "ctx"), true},
		{"internal", errors.Internal("x"), false},
		{"plain", stderrors.New("x"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsNotFound(tc.err))
		})
	}
}

func TestPredicateHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeValidation, "v")))
	assert.True(t, errors.IsValidation(errors.InvalidParam("p")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeScoreInputInvalid, "s")))
	assert.True(t, errors.IsConflict(errors.Conflict("c")))
	assert.True(t, errors.IsConflict(errors.New(errors.ErrCodeProfileAlreadyExists, "dup")))
	assert.True(t, errors.IsUnauthorized(errors.Unauthorized("u")))
	assert.True(t, errors.IsForbidden(errors.Forbidden("f")))
	assert.False(t, errors.IsValidation(errors.Internal("i")))
}
