package interceptor_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
	"github.com/jonesrussell/north-cloud/constructorio/interceptor"
	"github.com/jonesrussell/north-cloud/constructorio/session"
	"github.com/jonesrussell/north-cloud/constructorio/store"
)

var fixedNow = time.UnixMilli(1700000000000)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type recorder struct {
	requests []*http.Request
}

func (r *recorder) transport() http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		r.requests = append(r.requests, req)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}")), Request: req}, nil
	})
}

func newEnricher(t *testing.T, rec *recorder, opts ...interceptor.Option) (*interceptor.Enricher, *session.Manager) {
	t.Helper()
	ctx := context.Background()

	st := store.NewMemory()
	require.NoError(t, st.SetString(ctx, session.KeyClientID, "guido-the-guid"))
	require.NoError(t, st.SetInt(ctx, session.KeySessionID, 79))
	require.NoError(t, st.SetLong(ctx, session.KeyLastAccess, fixedNow.UnixMilli()))

	clock := func() time.Time { return fixedNow }
	sess := session.NewManager(st, session.WithClock(clock))
	sess.SetUserID("player-one")

	opts = append([]interceptor.Option{interceptor.WithClock(clock)}, opts...)
	e := interceptor.New(rec.transport(), sess, interceptor.Config{
		APIKey:        "golden-key",
		ClientVersion: "cio-go-1.0.0",
	}, opts...)
	return e, sess
}

func send(t *testing.T, e *interceptor.Enricher, method, rawURL string, body io.Reader) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, rawURL, body)
	require.NoError(t, err)
	resp, err := e.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestEnricher_CommonParamOrder(t *testing.T) {
	rec := &recorder{}
	e, _ := newEnricher(t, rec)

	send(t, e, http.MethodGet, "https://ac.cnstrc.com/autocomplete/titanic", nil)

	require.Len(t, rec.requests, 1)
	got := rec.requests[0].URL
	assert.Equal(t, "/autocomplete/titanic", got.Path)
	assert.Equal(t, "key=golden-key&i=guido-the-guid&ui=player-one&s=79&c=cio-go-1.0.0&_dt=1700000000000", got.RawQuery)
}

func TestEnricher_AppendsAfterExistingParams(t *testing.T) {
	rec := &recorder{}
	e, _ := newEnricher(t, rec)

	send(t, e, http.MethodGet, "https://ac.cnstrc.com/autocomplete/titanic?filters%5BstoreLocation%5D=CA", nil)

	assert.True(t, strings.HasPrefix(rec.requests[0].URL.RawQuery, "filters%5BstoreLocation%5D=CA&key=golden-key&i=guido-the-guid"))
}

func TestEnricher_TestCellsAndSegments(t *testing.T) {
	rec := &recorder{}
	e, sess := newEnricher(t, rec)
	ctx := context.Background()

	require.NoError(t, sess.SetTestCells(ctx, []session.TestCell{{Key: "a", Value: "b"}, {Key: "c", Value: "d"}}))
	sess.SetSegments([]string{"mobile", "return visitor"})
	sess.SetUserID("")

	send(t, e, http.MethodGet, "https://ac.cnstrc.com/search/boat", nil)

	assert.Equal(t,
		"key=golden-key&i=guido-the-guid&s=79&ef-a=b&ef-c=d&us=mobile&us=return%20visitor&c=cio-go-1.0.0&_dt=1700000000000",
		rec.requests[0].URL.RawQuery)
}

func TestEnricher_TimestampExclusions(t *testing.T) {
	for _, path := range []string{"/browse/groups", "/browse/facets", "/browse/facet_options"} {
		t.Run(path, func(t *testing.T) {
			rec := &recorder{}
			e, _ := newEnricher(t, rec)
			send(t, e, http.MethodGet, "https://ac.cnstrc.com"+path, nil)
			assert.NotContains(t, rec.requests[0].URL.RawQuery, "_dt=")
		})
	}

	rec := &recorder{}
	e, _ := newEnricher(t, rec)
	send(t, e, http.MethodGet, "https://ac.cnstrc.com/browse/items?ids=1", nil)
	assert.Contains(t, rec.requests[0].URL.RawQuery, "_dt=1700000000000")
}

func TestEnricher_RedactsBehavioralPathsOnly(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		redacts bool
	}{
		{
			name:    "behavior",
			url:     "https://ac.cnstrc.com/behavior?action=focus&term=shopper@example.com",
			want:    "action=focus&term=%3Cemail_omitted%3E&",
			redacts: true,
		},
		{
			name:    "autocomplete search event",
			url:     "https://ac.cnstrc.com/autocomplete/titanic/search?original_query=4111%201111%201111%201111&tr=search",
			want:    "original_query=%3Ccredit_omitted%3E&tr=search&",
			redacts: true,
		},
		{
			name:    "v2 conversion",
			url:     "https://ac.cnstrc.com/v2/behavioral_action/conversion?note=call%20415-555-1234",
			want:    "note=call%20%3Cphone_omitted%3E&",
			redacts: true,
		},
		{
			name: "search query",
			url:  "https://ac.cnstrc.com/search/anything?term=shopper%40example.com",
			want: "term=shopper%40example.com&",
		},
		{
			name: "autocomplete query",
			url:  "https://ac.cnstrc.com/autocomplete/titanic?original_query=shopper%40example.com",
			want: "original_query=shopper%40example.com&",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			e, _ := newEnricher(t, rec)
			send(t, e, http.MethodGet, tt.url, nil)
			assert.True(t, strings.HasPrefix(rec.requests[0].URL.RawQuery, tt.want), rec.requests[0].URL.RawQuery)
		})
	}
}

func TestEnricher_LeavesRequestUntouched(t *testing.T) {
	rec := &recorder{}
	e, _ := newEnricher(t, rec)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
		"https://ac.cnstrc.com/v2/behavioral_action/purchase", strings.NewReader(`{"revenue":10}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Empty(t, req.URL.RawQuery, "caller's request must not be modified")

	sent := rec.requests[0]
	assert.Equal(t, http.MethodPost, sent.Method)
	assert.Equal(t, "application/json", sent.Header.Get("Content-Type"))
	body, err := io.ReadAll(sent.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"revenue":10}`, string(body))
}

func TestEnricher_AppliesPort(t *testing.T) {
	rec := &recorder{}
	ctx := context.Background()
	sess := session.NewManager(store.NewMemory())
	e := interceptor.New(rec.transport(), sess, interceptor.Config{APIKey: "k", ClientVersion: "v", Port: 8443})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://ac.cnstrc.com/search/x", nil)
	require.NoError(t, err)
	resp, err := e.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "ac.cnstrc.com:8443", rec.requests[0].URL.Host)

	e = interceptor.New(rec.transport(), sess, interceptor.Config{APIKey: "k", ClientVersion: "v", Port: 443})
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, "https://ac.cnstrc.com/search/x", nil)
	require.NoError(t, err)
	resp, err = e.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "ac.cnstrc.com", rec.requests[1].URL.Host)
}

func TestEnricher_SessionStartCallback(t *testing.T) {
	rec := &recorder{}
	now := fixedNow
	clock := func() time.Time { return now }
	sess := session.NewManager(store.NewMemory(), session.WithClock(clock))

	var started []string
	e := interceptor.New(rec.transport(), sess, interceptor.Config{APIKey: "k", ClientVersion: "v"},
		interceptor.WithClock(clock),
		interceptor.WithSessionStart(func(id string) { started = append(started, id) }))

	send(t, e, http.MethodGet, "https://ac.cnstrc.com/search/x", nil)
	assert.Equal(t, "1", rec.requests[0].URL.Query().Get("s"))
	assert.Empty(t, started)

	now = now.Add(31 * time.Minute)
	send(t, e, http.MethodGet, "https://ac.cnstrc.com/search/x", nil)
	assert.Equal(t, "2", rec.requests[1].URL.Query().Get("s"))
	assert.Equal(t, []string{"2"}, started)
}

func TestEnricher_MalformedEventQueryIsBuildError(t *testing.T) {
	rec := &recorder{}
	e, _ := newEnricher(t, rec)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://ac.cnstrc.com/behavior", nil)
	require.NoError(t, err)
	req.URL.RawQuery = "term=%zz"

	_, err = e.RoundTrip(req)
	require.Error(t, err)
	assert.True(t, cioerrors.IsKind(err, cioerrors.KindBuild))
	assert.Empty(t, rec.requests)
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "shopper@example.com", want: "<email_omitted>"},
		{in: "contact first.last+tag@mail.example.co.uk now", want: "contact <email_omitted> now"},
		{in: "415-555-1234", want: "<phone_omitted>"},
		{in: "(415) 555-1234", want: "<phone_omitted>"},
		{in: "+1 415 555 1234", want: "<phone_omitted>"},
		{in: "4111111111111111", want: "<credit_omitted>"},
		{in: "4111-1111-1111-1111", want: "<credit_omitted>"},
		{in: "a@example.com or 415-555-1234", want: "<email_omitted> or 415-555-1234"},
		{in: "red running shoes", want: "red running shoes"},
		{in: "size 10", want: "size 10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, interceptor.Redact(tt.in))
		})
	}
}

func TestIsBehavioralPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/behavior", true},
		{"/behavior/extra", false},
		{"/autocomplete/titanic/select", true},
		{"/autocomplete/titanic/search", true},
		{"/autocomplete/titanic/click_through", true},
		{"/autocomplete/titanic/conversion", true},
		{"/autocomplete/titanic/purchase", true},
		{"/autocomplete/titanic", false},
		{"/autocomplete/titanic/other", false},
		{"/v2/behavioral_action/conversion", true},
		{"/v2/behavioral_action/browse_result_load", true},
		{"/v2/behavioral_action/Upper", false},
		{"/search/titanic", false},
		{"/browse/groups", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, interceptor.IsBehavioralPath(tt.path))
		})
	}
}
