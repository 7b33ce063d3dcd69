package domain

import "errors"

// Resultados esperados de control; no son fallas del pipeline.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrCooldownActive   = errors.New("cooldown active")
)

// Fallas de I/O; se loguean y se abandona el evento, nunca se reintentan.
var (
	ErrPlatformCallFailed = errors.New("platform call failed")
	ErrStoreUnavailable   = errors.New("store unavailable")
)
