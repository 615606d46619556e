package multimock

import (
	"fmt"
	"regexp"
	"strings"
)

type endpointKey struct {
	url     string
	pattern bool
	method  string
}

func keyFor(d *Definition) endpointKey {
	key := endpointKey{method: strings.ToUpper(d.Method())}
	switch u := d.URL().(type) {
	case *regexp.Regexp:
		key.url = u.String()
		key.pattern = true
	case string:
		key.url = u
	}
	return key
}

// Flatten expands one level of nesting: elements are either a *Definition or
// a []*Definition, anything else is a usage error.
func Flatten(items []interface{}) ([]*Definition, error) {
	var defs []*Definition
	for _, item := range items {
		switch v := item.(type) {
		case *Definition:
			defs = append(defs, v)
		case []*Definition:
			defs = append(defs, v...)
		default:
			return nil, fmt.Errorf("unsupported mock definition type: %T", item)
		}
	}
	return defs, nil
}

// Group organises definitions into one MockConfiguration per (url, method)
// pair. Payload order within a group follows declaration order, and groups
// appear in first-seen order: the consuming backend serves each group's
// payloads in sequence, so both orderings are load-bearing. Method case is
// normalised at the grouping key, so "get" and "GET" share a group.
func Group(items []interface{}) ([]MockConfiguration, error) {
	defs, err := Flatten(items)
	if err != nil {
		return nil, err
	}
	return GroupDefinitions(defs...), nil
}

// GroupDefinitions is Group for an already-flat definition list.
func GroupDefinitions(defs ...*Definition) []MockConfiguration {
	grouped := make(map[endpointKey][]ResponsePayload)
	var order []endpointKey
	urls := make(map[endpointKey]interface{})

	for _, def := range defs {
		key := keyFor(def)
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
			urls[key] = def.URL()
		}
		grouped[key] = append(grouped[key], PayloadFor(def))
	}

	output := make([]MockConfiguration, 0, len(order))
	for _, key := range order {
		output = append(output, MockConfiguration{
			URL:       urls[key],
			Method:    key.method,
			Responses: grouped[key],
		})
	}
	return output
}

// PayloadFor derives the sparse payload for one definition. A failure is
// exclusive: status, json and text are dropped no matter what else was
// supplied.
func PayloadFor(d *Definition) ResponsePayload {
	if err := d.Failure(); err != nil {
		return ResponsePayload{Err: err}
	}
	return ResponsePayload{
		Text:       d.Text(),
		StatusCode: d.StatusCode(),
		JSON:       d.JSON(),
	}
}
