package track

import "errors"

// Errors returned by the Recorder. Both leave the recorder unchanged.
var (
	ErrInvalidTransition = errors.New("invalid recording state transition")
	ErrInvalidSample     = errors.New("invalid location sample")
)
