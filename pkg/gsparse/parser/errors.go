package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat indicates a format tag other than csv or xlsx.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEncodingDetection indicates the byte encoding of delimited text could not be determined.
	ErrEncodingDetection = errors.New("encoding detection failed")
	// ErrContainerFormat indicates a structurally invalid spreadsheet container.
	ErrContainerFormat = errors.New("invalid container format")
	// ErrParse indicates malformed delimited text.
	ErrParse = errors.New("parse error")
	// ErrInvalidDelimiter indicates a delimiter that cannot separate fields.
	ErrInvalidDelimiter = errors.New("invalid delimiter")
	// ErrInvalidQuote indicates a quote character that clashes with the delimiter or line breaks.
	ErrInvalidQuote = errors.New("invalid quote character")

	errMissingPart  = errors.New("missing part")
	errSharedString = errors.New("unresolvable shared string")
)

// EncodingDetectionError reports the best guess the detector produced, if any.
type EncodingDetectionError struct {
	Charset    string
	Confidence int
	Err        error
}

func (e *EncodingDetectionError) Error() string {
	if e.Charset == "" {
		return fmt.Sprintf("encoding detection failed: %v", e.Err)
	}
	return fmt.Sprintf("encoding detection failed (charset %q, confidence %d): %v", e.Charset, e.Confidence, e.Err)
}

func (e *EncodingDetectionError) Unwrap() []error {
	return nonNil(ErrEncodingDetection, e.Err)
}

// ContainerFormatError names the container part that could not be read.
type ContainerFormatError struct {
	Part string
	Err  error
}

func (e *ContainerFormatError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("invalid container: %v", e.Err)
	}
	return fmt.Sprintf("invalid container part %q: %v", e.Part, e.Err)
}

func (e *ContainerFormatError) Unwrap() []error {
	return nonNil(ErrContainerFormat, e.Err)
}

// ParseError locates malformed delimited text.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return nonNil(ErrParse, e.Err)
}

func nonNil(errs ...error) []error {
	out := errs[:0]
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
