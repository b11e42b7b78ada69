package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeError reports that a body could not be decoded as the requested
// format. Offset is the byte offset the decoder reported, or -1 when the
// decoder does not track offsets. Field names the offending field when
// known.
type DecodeError struct {
	Format string
	Offset int64
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode %s", e.Format)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	return msg + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodingError reports that body bytes are not valid text. Offset is the
// position of the first invalid byte.
type EncodingError struct {
	Offset int64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("body is not valid UTF-8 text (first invalid byte at offset %d)", e.Offset)
}

func newDecodeError(format string, err error) *DecodeError {
	de := &DecodeError{
		Format: format,
		Offset: -1,
		Err:    err,
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		de.Offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		de.Offset = typeErr.Offset
		de.Field = typeErr.Field
	}

	return de
}
