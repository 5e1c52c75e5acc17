package convert

import "fmt"

// ConversionError is the only fatal failure the pipeline produces. It
// marks input the scanner could not make sense of; every other
// condition degrades into notes on the Result.
type ConversionError struct {
	Reason string
	Offset int // byte offset into the original source, -1 when unknown
}

func (e *ConversionError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("convert: %s at offset %d", e.Reason, e.Offset)
	}
	return "convert: " + e.Reason
}

func parseFailure(reason string, offset int) error {
	return &ConversionError{Reason: reason, Offset: offset}
}
