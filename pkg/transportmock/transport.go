package transportmock

import (
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/multimock/multimock/pkg/multimock"
)

// Transport is the request-interception backend: an http.RoundTripper that
// serves declared payload queues instead of touching the network. Matchers
// are consulted in registration order and the first (method, url) match
// wins.
type Transport struct {
	mu       sync.RWMutex
	matchers []*Matcher
	notify   *notify
}

func New() *Transport {
	return &Transport{notify: newNotify()}
}

// Client returns an http.Client whose requests are served by this transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RegisterResponder registers one payload queue for an endpoint. The queue
// is served in order, one payload per matching call, with the last payload
// repeating once the queue is exhausted.
func (t *Transport) RegisterResponder(method string, url interface{}, responses []multimock.ResponsePayload) (*Matcher, error) {
	if len(responses) == 0 {
		return nil, errors.Errorf("at least one response required for %s %s", method, urlText(url))
	}

	matcher, err := newMatcher(method, url, responses, t.notify)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.matchers = append(t.matchers, matcher)
	t.mu.Unlock()

	log.Infof("registered responder %s %s (%d responses)", matcher.Method(), matcher.URL(), len(responses))
	return matcher, nil
}

// Apply groups the definitions, registers one responder per endpoint and
// returns the resulting MockSet. Elements are either a *Definition or a
// []*Definition; anything else fails the setup immediately.
func (t *Transport) Apply(items []interface{}) (*MockSet, error) {
	defs, err := multimock.Flatten(items)
	if err != nil {
		return nil, err
	}

	matchers := make(map[string]*Matcher)
	for _, cfg := range multimock.GroupDefinitions(defs...) {
		matcher, err := t.RegisterResponder(cfg.Method, cfg.URL, cfg.Responses)
		if err != nil {
			return nil, err
		}
		matchers[urlText(cfg.URL)] = matcher
	}

	for _, def := range defs {
		for _, c := range def.Constraints() {
			matcher := t.matcherFor(def.Method(), def.URL())
			if matcher == nil {
				continue
			}
			log.Infof("adding constraint %q to %s %s", c.Path, matcher.Method(), matcher.URL())
			matcher.AddConstraint(c)
		}
	}

	return NewMockSet(defs, t, matchers), nil
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	matcher := t.match(req)
	if matcher == nil {
		return nil, errors.Errorf("no responder registered for %s %s", req.Method, req.URL)
	}
	return matcher.serve(req)
}

func (t *Transport) match(req *http.Request) *Matcher {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, m := range t.matchers {
		if m.matches(req.Method, req.URL) {
			return m
		}
	}
	return nil
}

func (t *Transport) matcherFor(method string, url interface{}) *Matcher {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, m := range t.matchers {
		if m.Method() == strings.ToUpper(method) && m.URL() == urlText(url) {
			return m
		}
	}
	return nil
}

func urlText(url interface{}) string {
	switch u := url.(type) {
	case string:
		return u
	case *regexp.Regexp:
		return u.String()
	default:
		return ""
	}
}
