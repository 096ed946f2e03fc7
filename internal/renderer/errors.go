package renderer

import (
	"errors"
	"fmt"
)

var ErrTemplate = errors.New("invalid template")

// RenderError is a failure to render one participant. Shared marks defects
// that would fail every row the same way, such as a missing template.
type RenderError struct {
	Row    int
	Shared bool
	Err    error
}

func (e *RenderError) Error() string {
	if e.Shared {
		return fmt.Sprintf("render failed for every row: %v", e.Err)
	}
	return fmt.Sprintf("render failed for row %d: %v", e.Row, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
