// Package apitest runs a fake search API for tests. Every request is recorded
// and answered from per-path stubs.
package apitest

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/constructorio/config"
)

// Recorded is one request received by the server.
type Recorded struct {
	Method     string
	Path       string
	RawQuery   string
	RequestURI string
	Header     http.Header
	Body       []byte
}

// Query parses the recorded query string.
func (r Recorded) Query() url.Values {
	v, _ := url.ParseQuery(r.RawQuery)
	return v
}

type stub struct {
	status int
	body   string
	delay  time.Duration
}

// Server is a fake API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Recorded
	stubs    map[string]stub
}

// New starts a server that is closed when t ends. Unstubbed paths answer 200 {}.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{stubs: make(map[string]stub)}
	router := gin.New()
	router.NoRoute(s.handle)
	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) handle(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	path := c.Request.URL.EscapedPath()

	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method:     c.Request.Method,
		Path:       path,
		RawQuery:   c.Request.URL.RawQuery,
		RequestURI: c.Request.RequestURI,
		Header:     c.Request.Header.Clone(),
		Body:       body,
	})
	st, ok := s.stubs[path]
	s.mu.Unlock()

	if !ok {
		st = stub{status: http.StatusOK, body: "{}"}
	}
	if st.delay > 0 {
		select {
		case <-time.After(st.delay):
		case <-c.Request.Context().Done():
			return
		}
	}
	c.Data(st.status, "application/json", []byte(st.body))
}

// Stub answers requests for path with status and body.
func (s *Server) Stub(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stubs[path]
	st.status, st.body = status, body
	s.stubs[path] = st
}

// Delay holds responses for path for d.
func (s *Server) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stubs[path]
	if !ok {
		st = stub{status: http.StatusOK, body: "{}"}
	}
	st.delay = d
	s.stubs[path] = st
}

// Requests returns every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo returns the requests received for path.
func (s *Server) RequestsTo(path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// WaitFor blocks until n requests for path have arrived.
func (s *Server) WaitFor(t testing.TB, path string, n int) []Recorded {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(s.RequestsTo(path)) >= n
	}, 2*time.Second, 5*time.Millisecond, "waiting for %d requests to %s", n, path)
	return s.RequestsTo(path)
}

// Configure points cfg at the server.
func (s *Server) Configure(t testing.TB, cfg *config.Config) {
	t.Helper()
	u, err := url.Parse(s.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	cfg.ServiceURL = host
	cfg.QuizServiceURL = host
	cfg.ServiceScheme = u.Scheme
	cfg.ServicePort = p
}
