package service

import (
	"errors"

	"alchemy_webapp/internal/repository"
)

var (
	ErrUserNotFound       = repository.ErrUserNotFound
	ErrUserExists         = repository.ErrUserExists
	ErrInsufficientLight  = repository.ErrInsufficientLight
	ErrDailyLimitExceeded = repository.ErrDailyLimitExceeded
	ErrProgressNotFound   = repository.ErrProgressNotFound
	ErrInvalidAmount      = repository.ErrInvalidAmount

	ErrRecipientNotFound = errors.New("recipient not found")
	ErrSelfTransfer      = errors.New("cannot send light to yourself")
	ErrMissionNotFound   = errors.New("mission not found")
	ErrMissionLocked     = errors.New("mission is locked")
	ErrInvalidTransition = errors.New("invalid mission status transition")
	ErrInvalidInput      = errors.New("invalid input")
)
