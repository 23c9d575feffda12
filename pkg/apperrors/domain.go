package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабрики
// =========================================================================

// ErrSlugTaken - slug уже занят другой записью (409)
func ErrSlugTaken(domain, slug string) *AppError {
	return New(CodeSlugTaken, domain, "An entry with this name already exists", http.StatusConflict).
		WithDetails(map[string]string{"slug": slug})
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - фабрика для невалидных статусов (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// =========================================================================
// Auth & users
// =========================================================================

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeEmailAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)

var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"auth",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

var ErrUserBanned = New(
	CodeForbidden,
	"auth",
	"Your account has been banned",
	http.StatusForbidden,
)

// ErrCannotModifySelf - админ пытается изменить/удалить собственный аккаунт.
var ErrCannotModifySelf = New(
	CodeForbidden,
	"user",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrTooManyRequests = New(
	CodeTooManyRequests,
	"rate_limit",
	"Too many requests, please slow down",
	http.StatusTooManyRequests,
)

// =========================================================================
// Uploads
// =========================================================================

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"upload",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"upload",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// =========================================================================
// Jobs & applications
// =========================================================================

var ErrJobNotActive = New(
	CodeInvalidStatus,
	"job",
	"Job is not accepting applications",
	http.StatusConflict,
)

var ErrJobDeadlinePassed = New(
	CodeInvalidStatus,
	"job",
	"Application deadline has passed",
	http.StatusConflict,
)

var ErrCannotApplyToOwnJob = New(
	CodeInvalidOperation,
	"application",
	"Cannot apply to your own job",
	http.StatusBadRequest,
)

var ErrAlreadyApplied = New(
	CodeAlreadyExists,
	"application",
	"You have already applied to this job",
	http.StatusConflict,
)

var ErrResumeRequired = New(
	CodeValidationFailed,
	"application",
	"A resume is required: attach one or upload it to your profile",
	http.StatusBadRequest,
)

var ErrInvalidStatusTransition = New(
	CodeInvalidStatus,
	"application",
	"Status transition is not allowed",
	http.StatusConflict,
)

// =========================================================================
// Subscribers
// =========================================================================

var ErrAlreadySubscribed = New(
	CodeAlreadyExists,
	"subscriber",
	"This email is already subscribed",
	http.StatusConflict,
)
