package amr

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checks via errors.Is().
var (
	// ErrParse indicates malformed graph-notation text.
	ErrParse = errors.New("amr parse error")

	// ErrMissingMetadata indicates a required comment key is absent.
	ErrMissingMetadata = errors.New("missing metadata")
)

// ParseError reports malformed notation at a character offset of the input line.
// Wraps ErrParse for errors.Is() compatibility.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s at offset %d", ErrParse.Error(), e.Offset)
	}
	return fmt.Sprintf("%s at offset %d: %s", ErrParse.Error(), e.Offset, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// MissingMetadataError is returned when an annotation lacks a required key.
// Wraps ErrMissingMetadata.
type MissingMetadataError struct {
	Key   string
	Block int // 1-based block number in the source, 0 if unknown
}

func (e *MissingMetadataError) Error() string {
	if e == nil {
		return ""
	}
	if e.Block > 0 {
		return fmt.Sprintf("%s: %q (block %d)", ErrMissingMetadata.Error(), e.Key, e.Block)
	}
	return fmt.Sprintf("%s: %q", ErrMissingMetadata.Error(), e.Key)
}

func (e *MissingMetadataError) Unwrap() error { return ErrMissingMetadata }
