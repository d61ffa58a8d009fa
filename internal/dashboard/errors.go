package dashboard

import "errors"

var (
	ErrUnknownPanel = errors.New("unknown panel")
	ErrNotLoaded    = errors.New("panel has no loaded content")
	ErrNotFailed    = errors.New("panel is not in the failed state")
	ErrNoTool       = errors.New("panel has no tool selected")
	ErrZoomRange    = errors.New("zoom index out of range")
)
