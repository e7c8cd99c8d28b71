package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"domain not found", "NOT_FOUND", ErrCodeNotFound},
		{"domain not configured", "NOT_CONFIGURED", ErrCodeNotConfigured},
		{"domain parse error", "PARSE_ERROR", ErrCodeParse},
		{"domain access denied", "ACCESS_DENIED", ErrCodeAccessDenied},
		{"domain validation", "VALIDATION_ERROR", ErrCodeValidation},
		{"already wire format", ErrCodeConflict, ErrCodeConflict},
		{"unknown passes through", "ERR_SOMETHING_ELSE", "ERR_SOMETHING_ELSE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.in))
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"validation", ErrCodeValidation, http.StatusBadRequest},
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"not configured", ErrCodeNotConfigured, http.StatusConflict},
		{"parse", ErrCodeParse, http.StatusUnprocessableEntity},
		{"access denied", ErrCodeAccessDenied, http.StatusForbidden},
		{"internal", ErrCodeInternal, http.StatusInternalServerError},
		{"unknown defaults to 500", "ERR_NO_SUCH_CODE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}
