package model

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrExpired                 = errors.New("expired")
	ErrRevoked                 = errors.New("revoked")
	ErrMaxed                   = errors.New("view limit reached")
	ErrPasswordRequired        = errors.New("password required")
	ErrEmailRequired           = errors.New("email required")
	ErrRateLimited             = errors.New("rate limit exceeded")
	ErrEncryptionNotConfigured = errors.New("encryption not configured")
	ErrMasterKeyRevoked        = errors.New("master key revoked")
	ErrMasterKeyNotFound       = errors.New("master key not found")
	ErrScanJobFailed           = errors.New("scan job failed")
	ErrStoreUnavailable        = errors.New("store unavailable")
	ErrPolicyBlocked           = errors.New("blocked by policy")
	ErrForbidden               = errors.New("forbidden")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidRequest          = errors.New("invalid request")
)
