package transportmock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/multimock/multimock/internal/app/httpresponse"
	"github.com/multimock/multimock/pkg/multimock"
)

const defaultWaitDelay = 50 * time.Millisecond

type urlMatcher interface {
	match(u *url.URL) bool
}

// stringURLMatcher accepts the full request URL, the URL without its query,
// or a bare path.
type stringURLMatcher struct {
	val string
}

func (m *stringURLMatcher) match(u *url.URL) bool {
	if m.val == u.String() || m.val == u.Path {
		return true
	}
	stripped := *u
	stripped.RawQuery = ""
	stripped.Fragment = ""
	return m.val == stripped.String()
}

type regexURLMatcher struct {
	val *regexp.Regexp
}

func (m *regexURLMatcher) match(u *url.URL) bool {
	return m.val.MatchString(u.String()) || m.val.MatchString(u.Path)
}

// Matcher is the handle for one registered endpoint. It serves the payload
// queue and records every matching request for introspection.
type Matcher struct {
	mu          sync.Mutex
	method      string
	url         string
	urlMatcher  urlMatcher
	responses   []multimock.ResponsePayload
	next        int
	requests    []RequestDocument
	constraints []multimock.Constraint
	notify      *notify
}

func newMatcher(method string, target interface{}, responses []multimock.ResponsePayload, notify *notify) (*Matcher, error) {
	m := &Matcher{
		method:    strings.ToUpper(method),
		url:       urlText(target),
		responses: responses,
		notify:    notify,
	}
	switch u := target.(type) {
	case string:
		m.urlMatcher = &stringURLMatcher{val: u}
	case *regexp.Regexp:
		m.urlMatcher = &regexURLMatcher{val: u}
	default:
		return nil, errors.Errorf("unsupported url type %T for %s responder", target, method)
	}
	return m, nil
}

func (m *Matcher) Method() string { return m.method }

func (m *Matcher) URL() string { return m.url }

func (m *Matcher) matches(method string, u *url.URL) bool {
	return strings.ToUpper(method) == m.method && m.urlMatcher.match(u)
}

func (m *Matcher) AddConstraint(constraint multimock.Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = append(m.constraints, constraint)
}

func (m *Matcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns the recorded requests in arrival order.
func (m *Matcher) Requests() []RequestDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	requests := make([]RequestDocument, len(m.requests))
	copy(requests, m.requests)
	return requests
}

func (m *Matcher) LastRequest() *RequestDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	last := m.requests[len(m.requests)-1]
	return &last
}

// LastRequestJSON reads a path from the body of the most recent request.
func (m *Matcher) LastRequestJSON(path string) gjson.Result {
	last := m.LastRequest()
	if last == nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(last.Body, path)
}

// WaitForCalls blocks until the matcher has served at least count calls or
// the timeout passes. Useful when the client under test runs in its own
// goroutine.
func (m *Matcher) WaitForCalls(count int, timeout time.Duration) error {
	ok := retryFor(func(timeLeft time.Duration) bool {
		if m.CallCount() >= count {
			return true
		}
		wait := timeLeft
		if wait > defaultWaitDelay {
			wait = defaultWaitDelay
		}
		m.notify.Wait(wait)
		return m.CallCount() >= count
	}, defaultWaitDelay, timeout)
	if !ok {
		return errors.Errorf("timed out waiting for %d calls to %s %s, got %d",
			count, m.method, m.url, m.CallCount())
	}
	return nil
}

func (m *Matcher) serve(req *http.Request) (*http.Response, error) {
	doc, err := parseRequest(req)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse request for %s %s", m.method, m.url)
	}

	m.mu.Lock()
	m.requests = append(m.requests, doc)
	payload := m.responses[m.next]
	if m.next < len(m.responses)-1 {
		m.next++
	}
	constraints := append([]multimock.Constraint(nil), m.constraints...)
	m.mu.Unlock()
	m.notify.Notify()

	for _, constraint := range constraints {
		if err := checkConstraint(constraint, doc.document()); err != nil {
			apiErr := httpresponse.Errorf("constraint violated for %s %s: %s", m.method, m.url, err)
			return jsonResponse(req, http.StatusBadRequest, apiErr)
		}
	}

	if payload.Err != nil {
		log.Debugf("serving failure for %s %s: %s", m.method, m.url, payload.Err)
		return nil, payload.Err
	}

	log.Debugf("serving response %d for %s %s", m.CallCount(), m.method, m.url)
	return buildResponse(req, payload)
}

func buildResponse(req *http.Request, payload multimock.ResponsePayload) (*http.Response, error) {
	status := payload.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	header := make(http.Header)
	var body []byte
	switch {
	case payload.JSON != nil:
		data, err := json.Marshal(payload.JSON)
		if err != nil {
			return nil, errors.Wrap(err, "unable to encode response body")
		}
		body = data
		header.Set("Content-Type", "application/json")
	case payload.Text != "":
		body = []byte(payload.Text)
		header.Set("Content-Type", "text/plain")
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          ioutil.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

func jsonResponse(req *http.Request, status int, body interface{}) (*http.Response, error) {
	return buildResponse(req, multimock.ResponsePayload{StatusCode: status, JSON: body})
}
