package domain

import "errors"

var (
	ErrInvalidConfig           = errors.New("invalid formula config")
	ErrMissingComponent        = errors.New("missing component value")
	ErrNoData                  = errors.New("no data for cohort")
	ErrPlanLimitExceeded       = errors.New("plan limit exceeded")
	ErrNotFound                = errors.New("not found")
	ErrUpdateConflict          = errors.New("concurrent config update conflict")
	ErrDecryptionFailed        = errors.New("decryption failed")
	ErrChainVerificationFailed = errors.New("audit chain verification failed")
)
