package transportmock

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/multimock/multimock/pkg/multimock"
)

// MockSet is the read-only view handed back to a test: the definitions by
// endpoint name in declaration order, the matcher handles by URL, and the
// transport they were registered on.
type MockSet struct {
	order     []string
	defs      map[string]*multimock.Definition
	matchers  map[string]*Matcher
	transport *Transport
}

func NewMockSet(defs []*multimock.Definition, transport *Transport, matchers map[string]*Matcher) *MockSet {
	s := &MockSet{
		defs:      make(map[string]*multimock.Definition, len(defs)),
		matchers:  matchers,
		transport: transport,
	}
	if s.matchers == nil {
		s.matchers = make(map[string]*Matcher)
	}
	for _, def := range defs {
		if _, ok := s.defs[def.Name()]; !ok {
			s.order = append(s.order, def.Name())
		}
		s.defs[def.Name()] = def
	}
	return s
}

// Get returns the definition registered under the endpoint name. Unknown
// names are an error, never a silent nil.
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

// Definitions yields the definitions in declaration order.
func (s *MockSet) Definitions() []*multimock.Definition {
	defs := make([]*multimock.Definition, 0, len(s.order))
	for _, name := range s.order {
		defs = append(defs, s.defs[name])
	}
	return defs
}

// GetMatcher resolves a matcher handle by endpoint name or by URL. The
// lookup is advisory: absent entries return nil.
func (s *MockSet) GetMatcher(nameOrURL string) *Matcher {
	if def, ok := s.defs[nameOrURL]; ok {
		return s.matchers[urlText(def.URL())]
	}
	return s.matchers[nameOrURL]
}

func (s *MockSet) Transport() *Transport {
	return s.transport
}

func (s *MockSet) String() string {
	return "<MockSet with endpoints: " + strings.Join(s.order, ", ") + ">"
}
