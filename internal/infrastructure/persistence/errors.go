package persistence

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// permissionDenied reports whether a driver error is a permission failure:
// a read-only sqlite file, a revoked postgres grant, or a filesystem denial.
func permissionDenied(err error) bool {
	if errors.Is(err, os.ErrPermission) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "readonly database") ||
		strings.Contains(msg, "sqlstate 42501")
}

// gridError maps a driver failure onto the domain taxonomy. Permission-class
// failures become ACCESS_DENIED; everything else stays an internal error.
func gridError(op string, err error) error {
	if permissionDenied(err) {
		return shared.ErrAccessDenied
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
