package transportmock

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"
)

// RequestDocument is the record of one intercepted request.
type RequestDocument struct {
	Method string
	URL    string
	Path   string
	Query  map[string]interface{}
	Body   []byte
}

// parseRequest reads and restores the request body, so the client under test
// is unaffected by the interception.
func parseRequest(req *http.Request) (RequestDocument, error) {
	doc := RequestDocument{
		Method: req.Method,
		URL:    req.URL.String(),
		Path:   req.URL.Path,
		Query:  parseQueryValues(req),
	}

	if req.Body == nil {
		return doc, nil
	}

	data, err := ioutil.ReadAll(req.Body)
	if err != nil {
		return doc, errors.Wrap(err, "unable to read request body")
	}
	if err := req.Body.Close(); err != nil {
		return doc, err
	}
	req.Body = ioutil.NopCloser(bytes.NewBuffer(data))
	doc.Body = data
	return doc, nil
}

func parseQueryValues(req *http.Request) map[string]interface{} {
	queryValues := make(map[string]interface{})
	for q, v := range req.URL.Query() {
		if len(v) > 0 {
			queryValues[q] = v[0]
		}
	}
	return queryValues
}

// document shapes the request for constraint evaluation: jsonpath
// expressions address $.path, $.query and $.body.
func (d RequestDocument) document() map[string]interface{} {
	doc := map[string]interface{}{
		"path":  d.Path,
		"query": d.Query,
	}

	if len(d.Body) == 0 {
		doc["body"] = map[string]interface{}{}
		return doc
	}

	if isJSONContent(d.Body) {
		var body interface{}
		if err := json.Unmarshal(d.Body, &body); err == nil {
			doc["body"] = body
			return doc
		}
	}

	doc["body"] = string(d.Body)
	return doc
}

func isJSONContent(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
