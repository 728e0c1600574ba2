package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/metrics"
	"github.com/osse101/PullBot_Go/internal/ratelimit"
)

// RateLimitMiddleware throttles a route per user. The subject is the body's
// user_id (falling back to the query string, then the client IP). A nil
// limiter disables throttling. Limiter errors fail open.
func RateLimitMiddleware(scope string, limiter ratelimit.Limiter, trustedProxies []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := rateLimitSubject(r, trustedProxies)
			log := logger.FromContext(r.Context())

			d, err := limiter.Allow(r.Context(), scope+":"+subject)
			if err != nil {
				log.Warn(LogMsgRateLimitError, "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
			w.Header().Set(HeaderRateLimitRemaining, strconv.FormatInt(d.Remaining, 10))

			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				w.Header().Set(HeaderRetryAfter, strconv.Itoa(secs))
				metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
				log.Info(LogMsgRateLimited, "scope", scope, "subject", subject, "retry_after_s", secs)
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitSubject peeks at a JSON body for user_id and restores the body
// for the handler
func rateLimitSubject(r *http.Request, trustedProxies []string) string {
	if r.Body != nil && r.Body != http.NoBody {
		raw, err := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err == nil {
			var subject struct {
				UserID string `json:"user_id"`
			}
			if json.Unmarshal(raw, &subject) == nil && subject.UserID != "" {
				return "user:" + subject.UserID
			}
		}
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		return "user:" + userID
	}
	if ip := extractIP(r, trustedProxies); ip != "" {
		return "ip:" + ip
	}
	return anonymousRateLimitLabel
}
