package oracle

import (
	"errors"
	"fmt"
)

// ErrCredentialMissing means no API key was configured. The pipeline cannot
// start without one; callers must not retry.
var ErrCredentialMissing = errors.New("oracle API key is not configured")

// HTTPError is a non-2xx reply from the oracle service.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("oracle API error: %d - %s", e.Status, e.Body)
}

const formatErrorPreview = 200

// FormatError means the oracle replied but its content held no parseable
// JSON payload, or the payload violated the expected shape. The raw content
// is kept (truncated in the message) for diagnosis.
type FormatError struct {
	Content string
	Reason  string
}

func (e *FormatError) Error() string {
	preview := e.Content
	if len(preview) > formatErrorPreview {
		preview = preview[:formatErrorPreview] + "..."
	}
	if e.Reason != "" {
		return fmt.Sprintf("unparseable oracle response (%s): %s", e.Reason, preview)
	}
	return fmt.Sprintf("unparseable oracle response: %s", preview)
}
