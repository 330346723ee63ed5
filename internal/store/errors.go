package store

import "errors"

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrInvalidState     = errors.New("invalid request state")
	ErrMemberNotFound   = errors.New("team member not found")
	ErrClockEntryFailed = errors.New("time clock entry insert failed")
)
