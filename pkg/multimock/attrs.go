package multimock

import (
	"math"
	"regexp"
)

// EndpointFromAttrs declares an endpoint kind from loosely-typed attributes,
// as read from a definitions file. Attributes are type-checked in a fixed
// order (url, method, name, default_status_code, default_text,
// default_failure) and the first violation fails the declaration, so a
// malformed file is rejected before anything is registered.
//
// Recognised attributes:
//
//	url                 string or *regexp.Regexp
//	pattern             string, compiled into a URL regexp
//	method              string
//	name                string (defaults to the kind name)
//	default_status_code integer
//	default_json        any JSON value
//	default_text        string
//	default_failure     error, Failure or func() error
func EndpointFromAttrs(kind string, attrs map[string]interface{}) (*Endpoint, error) {
	e := Endpoint{Name: kind}

	if v, ok := attrs["url"]; ok && v != nil {
		switch u := v.(type) {
		case string, *regexp.Regexp:
			e.URL = u
		default:
			return nil, attrTypeError("url", kind, "string or *regexp.Regexp", v)
		}
	}
	if v, ok := attrs["pattern"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, attrTypeError("pattern", kind, "string", v)
		}
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, err
		}
		e.URL = re
	}
	if v, ok := attrs["method"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, attrTypeError("method", kind, "string", v)
		}
		e.Method = s
	}
	if v, ok := attrs["name"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, attrTypeError("name", kind, "string", v)
		}
		e.Name = s
	}
	if v, ok := attrs["default_status_code"]; ok && v != nil {
		code, ok := intAttr(v)
		if !ok {
			return nil, attrTypeError("default_status_code", kind, "int", v)
		}
		e.DefaultStatusCode = code
	}
	if v, ok := attrs["default_text"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, attrTypeError("default_text", kind, "string", v)
		}
		e.DefaultText = s
	}
	if v, ok := attrs["default_json"]; ok {
		e.DefaultJSON = v
	}
	if v, ok := attrs["default_failure"]; ok && v != nil {
		if _, err := toFailure(v, "default_failure", kind); err != nil {
			return nil, err
		}
		e.DefaultFailure = v
	}

	return NewEndpoint(e)
}

// JSON decoding yields float64, Go literals yield int.
func intAttr(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
