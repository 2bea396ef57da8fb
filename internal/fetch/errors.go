package fetch

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/bg1eym/atlas-data/internal/domain"
)

// TaggedError carries the failure bucket decided at the throw site, so the
// orchestrator does not have to re-derive intent from message text.
type TaggedError struct {
	Bucket domain.FailureBucket
	Err    error
}

func (e *TaggedError) Error() string { return e.Err.Error() }

func (e *TaggedError) Unwrap() error { return e.Err }

// Tag wraps err with a failure bucket.
func Tag(bucket domain.FailureBucket, err error) error {
	if err == nil {
		return nil
	}
	return &TaggedError{Bucket: bucket, Err: err}
}

// bucketTag returns the throw-site bucket, if any.
func bucketTag(err error) (domain.FailureBucket, bool) {
	var tagged *TaggedError
	if errors.As(err, &tagged) {
		return tagged.Bucket, true
	}
	return "", false
}

var httpStatusExpr = regexp.MustCompile(`(?i)\b(?:HTTP|Status code)\s+(\d{3})\b`)

// ParseHTTPStatus extracts an HTTP status code embedded in an error message.
// Returns 0 when none is present.
func ParseHTTPStatus(message string) int {
	m := httpStatusExpr.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// ClassifyBucket maps a terminal fetch error to its failure bucket. A tagged
// bucket wins; otherwise the message is scanned with a fixed precedence:
// empty, blocked, rate_limited, timeout, tls, dns, parse_error, then
// HTTP-status-derived 4xx/5xx, else unknown.
func ClassifyBucket(message string, itemCount int) domain.FailureBucket {
	if itemCount > 0 {
		return domain.BucketOK
	}
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "no items returned"):
		return domain.BucketEmpty
	case strings.Contains(msg, "blocked_by_policy") || strings.Contains(msg, "not configured"):
		return domain.BucketBlocked
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return domain.BucketRateLimited
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "etimedout") || strings.Contains(msg, "deadline exceeded"):
		return domain.BucketTimeout
	case strings.Contains(msg, "certificate") || strings.Contains(msg, "tls") || strings.Contains(msg, "ssl"):
		return domain.BucketTLS
	case strings.Contains(msg, "enotfound") || strings.Contains(msg, "dns") || strings.Contains(msg, "no such host"):
		return domain.BucketDNS
	case strings.Contains(msg, "parse") || strings.Contains(msg, "xml") || strings.Contains(msg, "unexpected token") || strings.Contains(msg, "invalid"):
		return domain.BucketParseError
	}
	if status := ParseHTTPStatus(message); status >= 500 {
		return domain.BucketHTTP5xx
	} else if status >= 400 {
		return domain.BucketHTTP4xx
	}
	return domain.BucketUnknown
}

// ClassifyError is ClassifyBucket with the throw-site tag honored first.
func ClassifyError(err error) domain.FailureBucket {
	if err == nil {
		return domain.BucketOK
	}
	if bucket, ok := bucketTag(err); ok {
		return bucket
	}
	return ClassifyBucket(err.Error(), 0)
}

// retryMarkers are the transient substrings that make an error retryable.
var retryMarkers = []string{"429", "500", "502", "503", "rate", "timeout", "ETIMEDOUT", "ECONNRESET"}

// IsRetryable reports whether the error looks transient. Tagged rate-limit
// and timeout buckets are always retryable; everything else falls back to
// the marker scan.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if bucket, ok := bucketTag(err); ok {
		if bucket == domain.BucketRateLimited || bucket == domain.BucketTimeout {
			return true
		}
	}
	msg := err.Error()
	for _, marker := range retryMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
