package aggregator

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoResults is returned when every tier produced zero postings.
	ErrNoResults = errors.New("no results found")
	// ErrNoProviders is returned when the aggregator has nothing to query.
	ErrNoProviders = errors.New("no providers configured")
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindTimeout     ErrorKind = "timeout"
	KindMalformed   ErrorKind = "malformed"
)

// ProviderError is the typed failure returned at a provider boundary.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func Unavailable(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindUnavailable, Err: err}
}

func Timeout(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindTimeout, Err: err}
}

func Malformed(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindMalformed, Err: err}
}

// Classify converts any error returned by a provider into a ProviderError.
func Classify(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		if perr.Provider == "" {
			perr = &ProviderError{Provider: provider, Kind: perr.Kind, Err: perr.Err}
		}
		return perr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Kind: KindTimeout, Err: err}
	}
	return &ProviderError{Provider: provider, Kind: KindUnavailable, Err: err}
}
