package tournament

import "errors"

var (
	ErrPairingNotFound = errors.New("pairing not found")
	ErrAlreadyResolved = errors.New("pairing already has a result")
	ErrInvalidOutcome  = errors.New("invalid outcome")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrDuplicatePlayer = errors.New("duplicate player")
	ErrInvalidPlayer   = errors.New("player name and username are required")
)
