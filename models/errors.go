package models

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch marks a transport failure reaching a provider.
	ErrFetch = errors.New("fetch failure")
	// ErrDecode marks a payload that does not match the provider schema.
	ErrDecode = errors.New("decode failure")
	// ErrMalformedSymbol marks a single record whose symbol cannot be parsed.
	ErrMalformedSymbol = errors.New("malformed symbol")
	// ErrStructuralAbsence marks an HTML document missing the expected structure.
	ErrStructuralAbsence = errors.New("structural absence")
)

// FetchError wraps err as a fetch failure of source.
func FetchError(source string, err error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrFetch, err)
}

// DecodeError wraps err as a decode failure of source.
func DecodeError(source string, err error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrDecode, err)
}

// MalformedSymbolError reports why raw could not be parsed.
func MalformedSymbolError(raw, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrMalformedSymbol, raw, reason)
}

// StructuralAbsenceError reports a missing selector in a document.
func StructuralAbsenceError(source, selector string) error {
	return fmt.Errorf("%s: %w: selector %q matched nothing", source, ErrStructuralAbsence, selector)
}
