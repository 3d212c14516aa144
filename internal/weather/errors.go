package weather

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies why a forecast retrieval failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindRateLimited
	KindAuthFailure
	KindNetworkError
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindAuthFailure:
		return "auth_failure"
	case KindNetworkError:
		return "network_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// RetrievalError is the only error type returned by Client.FetchForecast.
type RetrievalError struct {
	Kind       Kind
	StatusCode int    // HTTP status, zero when no response was received
	Message    string // provider or proxy message, may be empty
	Err        error  // underlying cause, may be nil
}

func (e *RetrievalError) Error() string {
	var b strings.Builder
	b.WriteString("weather retrieval failed (")
	b.WriteString(e.Kind.String())
	b.WriteString(")")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Is matches any *RetrievalError of the same Kind, so the sentinels below can
// be used with errors.Is.
func (e *RetrievalError) Is(target error) bool {
	t, ok := target.(*RetrievalError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// UserMessage is the text shown to the person who asked for the forecast.
func (e *RetrievalError) UserMessage() string {
	switch e.Kind {
	case KindNotFound:
		return "No weather data was found for that location."
	case KindRateLimited:
		return "The weather service is receiving too many requests. Please try again shortly."
	case KindAuthFailure:
		return "The weather service rejected our credentials."
	case KindNetworkError:
		return "Could not reach the weather service. Check your connection and try again."
	case KindMalformedResponse:
		return "The weather service returned data we could not read."
	default:
		if e.Message != "" {
			return "Failed to fetch weather data: " + e.Message
		}
		return "Failed to fetch weather data."
	}
}

var (
	ErrNotFound          = &RetrievalError{Kind: KindNotFound}
	ErrRateLimited       = &RetrievalError{Kind: KindRateLimited}
	ErrAuthFailure       = &RetrievalError{Kind: KindAuthFailure}
	ErrNetwork           = &RetrievalError{Kind: KindNetworkError}
	ErrMalformedResponse = &RetrievalError{Kind: KindMalformedResponse}
	ErrUnknown           = &RetrievalError{Kind: KindUnknown}
)

// ClassifyStatus maps a non-2xx HTTP status to a failure Kind.
func ClassifyStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthFailure
	default:
		return KindUnknown
	}
}

// errorBody covers both error shapes we can receive: the provider's
// {"error":{"code":..,"message":".."}} and the proxy's {"error":".."}.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type providerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorMessage extracts a human-readable message from an error response body.
// It never fails: ok is false when no message could be found.
func ErrorMessage(body []byte) (msg string, ok bool) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Error) == 0 {
		return "", false
	}

	var pe providerError
	if err := json.Unmarshal(eb.Error, &pe); err == nil && pe.Message != "" {
		return pe.Message, true
	}

	var s string
	if err := json.Unmarshal(eb.Error, &s); err == nil && s != "" {
		return s, true
	}
	return "", false
}
