package configuration

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/multimock/multimock/pkg/multimock"
)

// fileEntry mirrors one object in the definitions file. Everything except
// name is optional; values are validated by the endpoint declaration.
//
//	[
//	  {"name": "Fork", "url": "/fork", "method": "POST",
//	   "status_code": 200, "json": {"id": "fork101"}}
//	]
type fileEntry map[string]interface{}

// LoadDefinitions reads endpoint declarations from a JSON file. A malformed
// entry fails the whole load; no partial definition list is returned.
func LoadDefinitions(path string) ([]*multimock.Definition, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read definitions file")
	}

	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "unable to parse definitions file")
	}

	defs := make([]*multimock.Definition, 0, len(entries))
	for i, entry := range entries {
		kind := fmt.Sprintf("endpoint_%d", i+1)
		if name, ok := entry["name"].(string); ok {
			kind = name
		}

		endpoint, err := multimock.EndpointFromAttrs(kind, map[string]interface{}{
			"url":                 entry["url"],
			"pattern":             entry["pattern"],
			"method":              entry["method"],
			"name":                entry["name"],
			"default_status_code": entry["status_code"],
			"default_json":        entry["json"],
			"default_text":        entry["text"],
		})
		if err != nil {
			return nil, errors.Wrapf(err, "invalid definition %d in %s", i+1, path)
		}
		defs = append(defs, endpoint.Define())
	}
	return defs, nil
}
