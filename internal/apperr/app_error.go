package apperr

import "github.com/tuanvumaihuynh/catalog-admin/pkg/zerror"

const (
	ValidationErrorCode  = "VALIDATION_FAILED"
	ConnectionErrorCode  = "STORE_UNAVAILABLE"
	PersistenceErrorCode = "PERSISTENCE_FAILED"
	AuthErrorCode        = "INVALID_CREDENTIALS"
)

var (
	ValidationErr  = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ConnectionErr  = zerror.NewServiceUnavailable(ConnectionErrorCode, "document store is unavailable")
	PersistenceErr = zerror.NewInternalServerError(PersistenceErrorCode, "document store rejected the operation")
	AuthErr        = zerror.NewUnauthorized(AuthErrorCode, "Invalid email or password")
)
