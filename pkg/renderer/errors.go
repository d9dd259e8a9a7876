package renderer

import "errors"

var (
	// ErrStartup is returned by Open when the rendering engine cannot be started
	ErrStartup = errors.New("renderer failed to start")

	// ErrNotOpen is returned by Fetch before Open or after Close
	ErrNotOpen = errors.New("renderer is not open")

	// ErrNavigation is returned when a page cannot be loaded
	ErrNavigation = errors.New("navigation failed")

	// ErrTimeout is returned when a page does not load within the page timeout
	ErrTimeout = errors.New("page load timed out")
)
