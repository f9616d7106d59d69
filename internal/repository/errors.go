package repository

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInsufficientLight  = errors.New("insufficient light")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrProgressNotFound   = errors.New("mission progress not found")
	ErrDailyLimitExceeded = errors.New("daily light limit exceeded")
)
