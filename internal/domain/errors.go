package domain

import "errors"

var (
	ErrNotOperational        = errors.New("contract is not operational")
	ErrUnauthorized          = errors.New("caller is not authorized")
	ErrNotFunded             = errors.New("issuer is not funded")
	ErrDuplicateRegistration = errors.New("already registered")
	ErrInvalidState          = errors.New("invalid state")
	ErrQuorumMismatch        = errors.New("index does not match request")
	ErrInsufficientValue     = errors.New("insufficient value")
	ErrNothingToWithdraw     = errors.New("nothing to withdraw")
	ErrNotFound              = errors.New("not found")
	ErrDuplicateSubmission   = errors.New("request already submitted")
)
