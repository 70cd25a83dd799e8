package imageio

import "fmt"

// DecodeError reports an input image that could not be read or decoded.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode image %q: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports an image that could not be encoded or written.
type EncodeError struct {
	Dest   string
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("could not write %s image %q: %v", e.Format, e.Dest, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
