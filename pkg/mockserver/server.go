package mockserver

import (
	"context"
	"io/ioutil"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/multimock/multimock/internal/app/httpresponse"
	"github.com/multimock/multimock/pkg/multimock"
)

type Config struct {
	// Addr is the listen address. Empty means an ephemeral loopback port.
	Addr string
	// DisableHistory switches off request recording.
	DisableHistory bool
}

// Server is the call-time interception backend: a real loopback HTTP server
// that resolves the matching payload queue when a request arrives.
// Definitions are registered individually; the server queues repeat
// registrations for one endpoint itself.
type Server struct {
	config   Config
	echo     *echo.Echo
	server   *http.Server
	listener net.Listener
	store    *store
	url      string
}

func New(config Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		config: config,
		echo:   e,
		store:  &store{},
	}
	e.Any("/*", s.handle)
	return s
}

func (s *Server) Start() error {
	addr := s.config.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", addr)
	}
	s.listener = listener
	s.url = "http://" + listener.Addr().String()
	s.server = &http.Server{Handler: s.echo}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error(err)
		}
	}()

	log.Infof("mock server listening on %s", s.url)
	return nil
}

// URL returns the base URL to point the client under test at. Valid after
// Start.
func (s *Server) URL() string {
	return s.url
}

// Register queues one definition. Unlike the transport backend no
// pre-grouping is needed: repeat registrations for the same (path, method)
// queue in declaration order.
func (s *Server) Register(def *multimock.Definition) error {
	payload := multimock.PayloadFor(def)
	if err := s.store.register(def.Method(), def.URL(), []multimock.ResponsePayload{payload}); err != nil {
		return errors.Wrapf(err, "unable to register mock %q", def.Name())
	}
	log.Infof("registered mock %s for %s %v", def.Name(), def.Method(), def.URL())
	return nil
}

// Apply registers every definition individually and returns the MockSet.
// Elements are either a *Definition or a []*Definition.
func (s *Server) Apply(items []interface{}) (*MockSet, error) {
	defs, err := multimock.Flatten(items)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if err := s.Register(def); err != nil {
			return nil, err
		}
	}
	return NewMockSet(defs, s), nil
}

// Requests returns the recorded requests for an endpoint in arrival order.
// The path is either a concrete request path or the key the endpoint was
// registered under (a pattern's source for regexp URLs).
func (s *Server) Requests(method, path string) []RecordedRequest {
	e := s.store.lookup(method, path)
	if e == nil {
		e = s.store.find(path, method)
	}
	if e == nil {
		return nil
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	calls := make([]RecordedRequest, len(e.calls))
	copy(calls, e.calls)
	return calls
}

func (s *Server) CallCount(method, path string) int {
	return len(s.Requests(method, path))
}

// Reset drops all registered mocks and their history.
func (s *Server) Reset() {
	s.store.clear()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handle(c echo.Context) error {
	req := c.Request()
	e := s.store.find(req.URL.Path, req.Method)
	if e == nil {
		return c.JSON(http.StatusNotFound, httpresponse.Errorf("no mock registered for %s %s", req.Method, req.URL.Path))
	}

	body, err := ioutil.ReadAll(req.Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpresponse.Errorf("unable to read request body: %s", err))
	}

	s.store.mu.Lock()
	if !s.config.DisableHistory {
		e.calls = append(e.calls, RecordedRequest{
			Method: req.Method,
			Path:   req.URL.Path,
			Query:  req.URL.Query(),
			Body:   body,
		})
	}
	payload := e.pop()
	s.store.mu.Unlock()

	if payload.Err != nil {
		log.Warnf("aborting connection for %s %s: %s", req.Method, req.URL.Path, payload.Err)
		s.abort(c)
		return nil
	}

	status := payload.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	switch {
	case payload.JSON != nil:
		return c.JSON(status, payload.JSON)
	case payload.Text != "":
		return c.String(status, payload.Text)
	default:
		return c.NoContent(status)
	}
}

// abort simulates a transport failure: the connection is closed without a
// response, so the client sees a network error rather than a status code.
func (s *Server) abort(c echo.Context) {
	hijacker, ok := c.Response().Writer.(http.Hijacker)
	if ok {
		conn, _, err := hijacker.Hijack()
		if err == nil {
			if err := conn.Close(); err != nil {
				log.Error(err)
			}
			return
		}
	}
	panic(http.ErrAbortHandler)
}
