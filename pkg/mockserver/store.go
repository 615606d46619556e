package mockserver

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/multimock/multimock/pkg/multimock"
)

type pathMatcher interface {
	match(val string) bool
}

type stringPathMatcher struct {
	val string
}

func (m *stringPathMatcher) match(val string) bool {
	return val == m.val
}

type regexPathMatcher struct {
	val *regexp.Regexp
}

func (m *regexPathMatcher) match(val string) bool {
	return m.val.MatchString(val)
}

// RecordedRequest is one request served by the mock server.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// entry holds the payload queue and call history for one (path, method)
// endpoint. The queue advances one payload per call and the last payload
// repeats once exhausted.
type entry struct {
	method  string
	key     string
	matcher pathMatcher
	queue   []multimock.ResponsePayload
	next    int
	calls   []RecordedRequest
}

func (e *entry) pop() multimock.ResponsePayload {
	payload := e.queue[e.next]
	if e.next < len(e.queue)-1 {
		e.next++
	}
	return payload
}

type store struct {
	mu      sync.Mutex
	entries []*entry
}

// register queues payloads for an endpoint, creating the entry on first
// sight and appending on repeat registrations for the same (path, method).
func (s *store) register(method string, target interface{}, payloads []multimock.ResponsePayload) error {
	key, matcher, err := pathMatcherFor(target)
	if err != nil {
		return err
	}
	method = strings.ToUpper(method)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.method == method && e.key == key {
			e.queue = append(e.queue, payloads...)
			return nil
		}
	}
	s.entries = append(s.entries, &entry{
		method:  method,
		key:     key,
		matcher: matcher,
		queue:   payloads,
	})
	return nil
}

// find returns the first registered entry matching the request. Entries are
// consulted in registration order.
func (s *store) find(path, method string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	method = strings.ToUpper(method)
	for _, e := range s.entries {
		if e.method == method && e.matcher.match(path) {
			return e
		}
	}
	return nil
}

// lookup resolves an entry by its registration key, independent of whether
// any request has matched it.
func (s *store) lookup(method, key string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	method = strings.ToUpper(method)
	for _, e := range s.entries {
		if e.method == method && e.key == key {
			return e
		}
	}
	return nil
}

func (s *store) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// pathMatcherFor reduces a definition URL to a server path: absolute URLs
// are stripped to their path component, regexps match the raw request path.
func pathMatcherFor(target interface{}) (string, pathMatcher, error) {
	switch u := target.(type) {
	case string:
		path := u
		if parsed, err := url.Parse(u); err == nil && parsed.Host != "" {
			path = parsed.Path
		}
		if path == "" {
			path = "/"
		}
		return path, &stringPathMatcher{val: path}, nil
	case *regexp.Regexp:
		return u.String(), &regexPathMatcher{val: u}, nil
	default:
		return "", nil, errors.Errorf("unsupported url type %T for mock registration", target)
	}
}
