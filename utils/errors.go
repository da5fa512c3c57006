package utils

import (
	"github.com/jmgilman/go/errors"
)

// Error codes shared by the asset packages. The codes survive fmt.Errorf("%w")
// wrapping, so callers can classify a failure with errors.GetCode.
const (
	// CodeInputShape marks a buffer whose shape the codec or cache cannot accept
	// (wrong length, nil content, impossible dimensions).
	CodeInputShape errors.ErrorCode = "INPUT_SHAPE"

	// CodeFontConsistency marks glyphs of one font that disagree on rendered height.
	CodeFontConsistency errors.ErrorCode = "FONT_CONSISTENCY"

	// CodeCorruptData marks an encoded stream that ends before the expected output is produced.
	CodeCorruptData errors.ErrorCode = "CORRUPT_DATA"
)

// InputShapeError creates a new input shape error.
func InputShapeError(format string, args ...any) errors.PlatformError {
	return errors.Newf(CodeInputShape, format, args...)
}

// FontConsistencyError creates a new font consistency error carrying the offending font name.
func FontConsistencyError(font string, format string, args ...any) errors.PlatformError {
	return errors.WithContext(errors.Newf(CodeFontConsistency, format, args...), "font", font)
}

// CorruptDataError creates a new corrupt stream error.
func CorruptDataError(format string, args ...any) errors.PlatformError {
	return errors.Newf(CodeCorruptData, format, args...)
}

// ErrorCode returns the code attached to err, or errors.CodeUnknown.
func ErrorCode(err error) errors.ErrorCode {
	return errors.GetCode(err)
}
