// errors.go - Typed render failures.
package render

import "fmt"

// ValidationError reports bad caller input: empty text or an unknown template.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AssetError reports a background image that could not be loaded or decoded.
type AssetError struct {
	Ref string
	Err error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("background %s: %v", e.Ref, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// EncodingError reports a failure to produce the final image: building a
// text face or encoding the finished canvas.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode image: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
