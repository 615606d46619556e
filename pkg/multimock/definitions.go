package multimock

import (
	"fmt"
	"regexp"
)

// Failure describes a simulated transport error. It is either a prebuilt
// error value or a kind plus message template resolved into a fresh error
// each time the payload is served.
type Failure struct {
	err     error
	factory func() error
}

func FailWith(err error) Failure {
	return Failure{err: err}
}

func Failf(kind, format string, args ...interface{}) Failure {
	return Failure{factory: func() error {
		return fmt.Errorf("%s: %s", kind, fmt.Sprintf(format, args...))
	}}
}

func (f Failure) Resolve() error {
	if f.err != nil {
		return f.err
	}
	if f.factory != nil {
		return f.factory()
	}
	return nil
}

func (f Failure) IsZero() bool {
	return f.err == nil && f.factory == nil
}

// Endpoint declares the defaults for one mockable operation. Kinds are
// usually declared once at package level with MustEndpoint and reused
// across tests, with per-definition overrides where a test needs them.
type Endpoint struct {
	URL               interface{} // string or *regexp.Regexp
	Method            string
	Name              string
	DefaultStatusCode int
	DefaultJSON       interface{}
	DefaultText       string
	DefaultFailure    interface{} // error, Failure or func() error
}

// NewEndpoint validates the declared defaults and returns the kind. It is
// the declaration-time hook: a malformed kind fails here, before any
// definition built from it can reach a backend. Attributes are checked in a
// fixed order so the first error reported is stable.
func NewEndpoint(e Endpoint) (*Endpoint, error) {
	if e.URL != nil {
		switch e.URL.(type) {
		case string, *regexp.Regexp:
		default:
			return nil, attrTypeError("url", e.Name, "string or *regexp.Regexp", e.URL)
		}
	}
	if e.Name == "" {
		return nil, fmt.Errorf("endpoint kind requires a name")
	}
	if e.DefaultFailure != nil {
		if _, err := toFailure(e.DefaultFailure, "default_failure", e.Name); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

func MustEndpoint(e Endpoint) *Endpoint {
	kind, err := NewEndpoint(e)
	if err != nil {
		panic(err)
	}
	return kind
}

// Overrides carries the per-definition values. Zero fields fall back to the
// endpoint kind's defaults.
type Overrides struct {
	URL         interface{}
	Method      string
	Name        string
	StatusCode  int
	JSON        interface{}
	PartialJSON map[string]interface{}
	Text        string
	Failure     interface{}
	Constraints []Constraint
}

// Constraint restricts the requests a definition will accept: the value at
// Path in the request document must equal Format applied to Values.
type Constraint struct {
	Path   string
	Format string
	Values []interface{}
}

// Definition is the immutable description of one mocked response.
// Override-then-default resolution happens here, at construction.
type Definition struct {
	url         interface{}
	method      string
	name        string
	statusCode  int
	json        interface{}
	partialJSON map[string]interface{}
	text        string
	failure     Failure
	defaultJSON interface{}
	constraints []Constraint
}

// Define builds a Definition from the kind's defaults, applying overrides in
// order when given.
func (e *Endpoint) Define(overrides ...Overrides) *Definition {
	d := &Definition{
		url:         e.URL,
		method:      e.Method,
		name:        e.Name,
		statusCode:  e.DefaultStatusCode,
		text:        e.DefaultText,
		defaultJSON: e.DefaultJSON,
	}
	if e.DefaultFailure != nil {
		f, err := toFailure(e.DefaultFailure, "default_failure", e.Name)
		if err != nil {
			// NewEndpoint rejects this before a kind exists.
			panic(err)
		}
		d.failure = f
	}
	for _, o := range overrides {
		d.apply(o)
	}
	return d
}

func (d *Definition) apply(o Overrides) {
	if o.URL != nil {
		d.url = o.URL
	}
	if o.Method != "" {
		d.method = o.Method
	}
	if o.Name != "" {
		d.name = o.Name
	}
	if o.StatusCode != 0 {
		d.statusCode = o.StatusCode
	}
	if o.JSON != nil {
		d.json = o.JSON
	}
	if o.PartialJSON != nil {
		d.partialJSON = o.PartialJSON
	}
	if o.Text != "" {
		d.text = o.Text
	}
	if o.Failure != nil {
		f, err := toFailure(o.Failure, "failure", d.name)
		if err != nil {
			panic(err)
		}
		d.failure = f
	}
	if len(o.Constraints) > 0 {
		d.constraints = append(d.constraints, o.Constraints...)
	}
}

func (d *Definition) URL() interface{} { return d.url }

func (d *Definition) Method() string { return d.method }

func (d *Definition) Name() string { return d.name }

// StatusCode returns the explicit override if one was given, else the kind
// default. Zero means unset.
func (d *Definition) StatusCode() int { return d.statusCode }

func (d *Definition) Text() string { return d.text }

// Failure resolves the definition's failure into an error, or nil when
// the definition describes a normal response.
func (d *Definition) Failure() error { return d.failure.Resolve() }

func (d *Definition) Constraints() []Constraint { return d.constraints }

// JSON returns the response body: the explicit override when given, else the
// partial overlay merged onto a copy of the kind default, else a copy of the
// kind default. The kind's default body is never mutated.
func (d *Definition) JSON() interface{} {
	if d.json != nil {
		return d.json
	}
	if len(d.partialJSON) > 0 {
		return mergeJSON(d.defaultJSON, d.partialJSON)
	}
	return copyJSON(d.defaultJSON)
}

func (d *Definition) String() string {
	return fmt.Sprintf("%s(url=%v, method=%s, status_code=%d)", d.name, d.url, d.method, d.statusCode)
}

func toFailure(v interface{}, attr, kind string) (Failure, error) {
	switch f := v.(type) {
	case Failure:
		return f, nil
	case error:
		return FailWith(f), nil
	case func() error:
		return Failure{factory: f}, nil
	default:
		return Failure{}, attrTypeError(attr, kind, "error, Failure or func() error", v)
	}
}

func attrTypeError(attr, kind, expected string, value interface{}) error {
	return fmt.Errorf("the %q attribute of endpoint kind %q must be of type %s, got %s: %v",
		attr, kind, expected, fmt.Sprintf("%T", value), value)
}
