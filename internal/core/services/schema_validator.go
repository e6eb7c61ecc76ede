package services

import "github.com/manthysbr/auleServe/internal/core/domain"

// ValidateToolPayload reports whether payload satisfies the field contract
// for kind. It never modifies the payload.
func ValidateToolPayload(kind domain.ToolKind, payload any) bool {
	_, ok := domain.ParseToolArgs(kind, payload)
	return ok
}
