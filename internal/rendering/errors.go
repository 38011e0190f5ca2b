package rendering

import "fmt"

// RenderError wraps any failure along the render path with the stage it
// occurred in, so tracking rows and error-log entries can say which step broke.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
