package render

import "errors"

// Sentinel errors for rendering.
var (
	ErrRender            = errors.New("card rendering failed")
	ErrUnknownStyle      = errors.New("unknown style knob")
	ErrInvalidStyleValue = errors.New("invalid style value")
)
