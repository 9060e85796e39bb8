package errors_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseHTTPError_BelowThreshold(t *testing.T) {
	assert.NoError(t, cioerrors.ParseHTTPError(response(http.StatusOK, "{}")))
}

func TestParseHTTPError_MessageBody(t *testing.T) {
	err := cioerrors.ParseHTTPError(response(http.StatusBadRequest, `{"message":"num_results_per_page must be < 200"}`))
	require.Error(t, err)

	assert.Equal(t, cioerrors.KindHTTP, cioerrors.KindOf(err))
	code, ok := cioerrors.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, err.Error(), "num_results_per_page must be < 200")
	assert.False(t, cioerrors.IsNetworkError(err))
}

func TestParseHTTPError_PlainBody(t *testing.T) {
	err := cioerrors.ParseHTTPError(response(http.StatusInternalServerError, "upstream exploded"))

	var sdkErr *cioerrors.Error
	require.ErrorAs(t, err, &sdkErr)
	assert.Equal(t, "upstream exploded", sdkErr.Message)
	assert.Equal(t, "upstream exploded", sdkErr.Body)
}

func TestParseHTTPError_UnauthorizedRemapped(t *testing.T) {
	err := cioerrors.ParseHTTPError(response(http.StatusUnauthorized, `{"message":"You have supplied an invalid key"}`))

	assert.True(t, cioerrors.IsKind(err, cioerrors.KindUnauthorized))
	assert.Contains(t, err.Error(), "check the API key")
	assert.Contains(t, err.Error(), "invalid key")
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transport", cioerrors.NewTransport(io.ErrUnexpectedEOF), true},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), true},
		{"url error", &url.Error{Op: "Get", URL: "https://ac.cnstrc.com", Err: io.EOF}, true},
		{"build", cioerrors.Buildf("bad page %d", -1), false},
		{"plain", fmt.Errorf("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cioerrors.IsNetworkError(tt.err))
		})
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	err := cioerrors.NewDecode(io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, cioerrors.KindDecode, cioerrors.KindOf(fmt.Errorf("wrap: %w", err)))
}

func TestFromRoundTrip(t *testing.T) {
	build := cioerrors.Buildf("bad input")
	wrappedBuild := &url.Error{Op: "Get", URL: "https://ac.cnstrc.com/behavior?term=a@b.co", Err: build}
	assert.Same(t, build, cioerrors.FromRoundTrip("GET", "/behavior", wrappedBuild))

	timeout := &url.Error{Op: "Get", URL: "https://ac.cnstrc.com/behavior?term=a@b.co", Err: context.DeadlineExceeded}
	err := cioerrors.FromRoundTrip("GET", "/behavior", timeout)
	require.Error(t, err)
	assert.Equal(t, cioerrors.KindTransport, cioerrors.KindOf(err))
	assert.True(t, cioerrors.IsNetworkError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, err.Error(), "a@b.co")
	assert.Contains(t, err.Error(), "GET /behavior")

	assert.NoError(t, cioerrors.FromRoundTrip("GET", "/", nil))
}
