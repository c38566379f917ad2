package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"docqa/internal/ai"
)

// Classify maps a provider error into the shared taxonomy. Status codes are
// authoritative; message sniffing only disambiguates quota exhaustion from
// plain throttling on 429s. Anything unrecognized passes through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ai.ErrTransient, err)
	}

	msg := strings.ToLower(err.Error())

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests && strings.Contains(msg, "quota"):
			return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ai.ErrRateLimited, err)
		case apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", ai.ErrTransient, err)
		}
	}

	switch {
	case strings.Contains(msg, "insufficient_quota"), strings.Contains(msg, "quota exceeded"):
		return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
	case strings.Contains(msg, "rate_limit"), strings.Contains(msg, "rate limit"), strings.Contains(msg, "resource exhausted"), strings.Contains(msg, "resource_exhausted"):
		return fmt.Errorf("%w: %v", ai.ErrRateLimited, err)
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "unavailable"), strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", ai.ErrTransient, err)
	}

	return err
}
