package mockserver

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/multimock/multimock/pkg/multimock"
)

// MockSet is the read-only view for the server backend. Matching happens at
// call time, so there are no matcher handles: introspection goes through
// the server's recorded requests instead.
type MockSet struct {
	order  []string
	defs   map[string]*multimock.Definition
	server *Server
}

func NewMockSet(defs []*multimock.Definition, server *Server) *MockSet {
	s := &MockSet{
		defs:   make(map[string]*multimock.Definition, len(defs)),
		server: server,
	}
	for _, def := range defs {
		if _, ok := s.defs[def.Name()]; !ok {
			s.order = append(s.order, def.Name())
		}
		s.defs[def.Name()] = def
	}
	return s
}

func (s *MockSet) Get(name string) (*multimock.Definition, error) {
	def, ok := s.defs[name]
	if !ok {
		return nil, errors.Errorf("no definition registered for endpoint %q", name)
	}
	return def, nil
}

func (s *MockSet) Has(name string) bool {
	_, ok := s.defs[name]
	return ok
}

func (s *MockSet) Len() int {
	return len(s.defs)
}

func (s *MockSet) Definitions() []*multimock.Definition {
	defs := make([]*multimock.Definition, 0, len(s.order))
	for _, name := range s.order {
		defs = append(defs, s.defs[name])
	}
	return defs
}

func (s *MockSet) Server() *Server {
	return s.server
}

// RequestsFor returns the requests served for the named endpoint. Unlike
// Get, an endpoint that has simply not been called yet yields an empty
// slice, not an error.
func (s *MockSet) RequestsFor(name string) ([]RecordedRequest, error) {
	def, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	key, _, err := pathMatcherFor(def.URL())
	if err != nil {
		return nil, err
	}
	return s.server.Requests(def.Method(), key), nil
}

func (s *MockSet) String() string {
	return "<MockSet with endpoints: " + strings.Join(s.order, ", ") + ">"
}
