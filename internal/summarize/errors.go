package summarize

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

var (
	// ErrProviderUnreachable is a transient network or timeout
	// failure; one bounded retry is allowed.
	ErrProviderUnreachable = errors.New("summarization provider unreachable")

	// ErrProviderRejected is an auth, quota or invalid-model failure;
	// retrying would not help.
	ErrProviderRejected = errors.New("summarization provider rejected request")
)

// rejectedMarkers are substrings of provider error bodies that signal
// a non-transient rejection.
var rejectedMarkers = []string{
	"401", "403", "429",
	"unauthorized",
	"invalid api key",
	"invalid_api_key",
	"authentication",
	"quota",
	"model not found",
	"model_not_found",
	"billing",
}

// classify maps a raw provider error onto the failure taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rejectedMarkers {
		if strings.Contains(msg, marker) {
			return ErrProviderRejected
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "eof") {
		return ErrProviderUnreachable
	}

	// Unknown provider errors read as rejections: retrying a request
	// the provider already answered is worse than giving up.
	return ErrProviderRejected
}
