package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Playback errors
	ErrPlayback         = fmt.Errorf("playback failed")
	ErrAudioUnavailable = fmt.Errorf("audio device unavailable")

	// Library errors
	ErrTuneNotFound  = fmt.Errorf("tune not found")
	ErrDuplicateTune = fmt.Errorf("tune already exists")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
