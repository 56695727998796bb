package llm

import (
	"fmt"
	"net/http"

	"github.com/Veraticus/medicoder/internal/common"
)

// apiError classifies a non-200 provider response for the retry loop.
// Rate limits and server errors are retried, everything else fails fast.
func apiError(provider string, status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &common.RetryableError{
			Err:       fmt.Errorf("%s API error (status %d): %w", provider, status, common.ErrRateLimit),
			Retryable: true,
		}
	case status >= http.StatusInternalServerError:
		return &common.RetryableError{
			Err:       fmt.Errorf("%s API error (status %d): %s", provider, status, string(body)),
			Retryable: true,
		}
	default:
		return &common.RetryableError{
			Err:       fmt.Errorf("%s API error (status %d): %s", provider, status, string(body)),
			Retryable: false,
		}
	}
}
