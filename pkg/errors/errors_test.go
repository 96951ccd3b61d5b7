package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	withCode := New(ErrorTypeHTTPStatus, 503, "HTTP Error: 503")
	assert.Equal(t, "http_status error (code 503): HTTP Error: 503", withCode.Error())

	withoutCode := New(ErrorTypeContext, 0, "not a profile page")
	assert.Equal(t, "context error: not a profile page", withoutCode.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrorTypeNetwork, 0, io.ErrUnexpectedEOF, "request failed")

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "request failed")
	assert.Contains(t, err.Error(), io.ErrUnexpectedEOF.Error())
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"typed", New(ErrorTypeParsing, 200, "bad json"), ErrorTypeParsing},
		{"wrapped typed", fmt.Errorf("page 3: %w", New(ErrorTypeRateLimit, 429, "slow down")), ErrorTypeRateLimit},
		{"plain", errors.New("boom"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeOf(tt.err))
		})
	}

	assert.False(t, IsType(nil, ErrorTypeUnknown))
	assert.True(t, IsType(New(ErrorTypeContext, 0, "x"), ErrorTypeContext))
}

func TestTypeForStatusCode(t *testing.T) {
	assert.Equal(t, ErrorTypeNetwork, TypeForStatusCode(0))
	assert.Equal(t, ErrorTypeRateLimit, TypeForStatusCode(429))
	assert.Equal(t, ErrorTypeHTTPStatus, TypeForStatusCode(404))
	assert.Equal(t, ErrorTypeHTTPStatus, TypeForStatusCode(502))
}
