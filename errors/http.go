package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MinErrorStatusCode is the minimum HTTP status code considered an error.
const MinErrorStatusCode = 400

// maxErrorBody bounds how much of an error body is kept.
const maxErrorBody = 64 << 10

// ParseHTTPError converts an error response into an *Error. It returns nil for
// status codes below MinErrorStatusCode. The body is consumed but not closed.
func ParseHTTPError(resp *http.Response) error {
	if resp.StatusCode < MinErrorStatusCode {
		return nil
	}

	kind := KindHTTP
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = KindUnauthorized
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &Error{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    fmt.Sprintf("failed to read error response body: %v", err),
		}
	}
	body := strings.TrimSpace(string(bodyBytes))

	msg := messageFromBody(bodyBytes)
	if msg == "" {
		msg = body
	}
	if kind == KindUnauthorized {
		msg = unauthorizedMessage(msg)
	}

	return &Error{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
		Message:    msg,
	}
}

// messageFromBody extracts {"message": ...} or {"error": ...} from a JSON body.
func messageFromBody(body []byte) string {
	var jsonErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &jsonErr) != nil {
		return ""
	}
	if jsonErr.Message != "" {
		return jsonErr.Message
	}
	return jsonErr.Error
}

func unauthorizedMessage(serviceMsg string) string {
	const hint = "request was rejected; check the API key"
	if serviceMsg == "" {
		return hint
	}
	return hint + ": " + serviceMsg
}
