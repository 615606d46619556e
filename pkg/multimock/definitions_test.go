package multimock

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineresolvesKindDefaults(t *testing.T) {
	kind := MustEndpoint(Endpoint{
		URL:               "https://example.com/api/fork",
		Method:            "POST",
		Name:              "Fork",
		DefaultStatusCode: 200,
		DefaultJSON:       map[string]interface{}{"id": "fork101"},
		DefaultText:       "forked",
	})

	def := kind.Define()

	assert.Equal(t, "https://example.com/api/fork", def.URL())
	assert.Equal(t, "POST", def.Method())
	assert.Equal(t, "Fork", def.Name())
	assert.Equal(t, 200, def.StatusCode())
	assert.Equal(t, map[string]interface{}{"id": "fork101"}, def.JSON())
	assert.Equal(t, "forked", def.Text())
	assert.NoError(t, def.Failure())
}

func TestDefineAppliesOverrides(t *testing.T) {
	kind := MustEndpoint(Endpoint{
		URL:               "https://example.com/api/push",
		Method:            "POST",
		Name:              "Push",
		DefaultStatusCode: 200,
		DefaultJSON:       map[string]interface{}{"id": "push102"},
	})

	def := kind.Define(Overrides{
		StatusCode: 400,
		JSON:       map[string]interface{}{"error": "Push failed"},
	})

	assert.Equal(t, 400, def.StatusCode())
	assert.Equal(t, map[string]interface{}{"error": "Push failed"}, def.JSON())
	assert.Equal(t, "https://example.com/api/push", def.URL())
	assert.Equal(t, "Push", def.Name())
}

func TestPartialJSONMergesOverDefaultCopy(t *testing.T) {
	defaultBody := map[string]interface{}{"a": 1}
	kind := MustEndpoint(Endpoint{
		URL:         "https://example.com/api",
		Method:      "GET",
		Name:        "Partial",
		DefaultJSON: defaultBody,
	})

	def := kind.Define(Overrides{PartialJSON: map[string]interface{}{"b": 2}})

	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, def.JSON())
	// the kind's shared default must not pick up the overlay
	assert.Equal(t, map[string]interface{}{"a": 1}, defaultBody)
	assert.Equal(t, map[string]interface{}{"a": 1}, kind.DefaultJSON)
}

func TestPartialJSONMergesOverEncodedDefault(t *testing.T) {
	type body struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	kind := MustEndpoint(Endpoint{
		URL:         "https://example.com/api",
		Method:      "GET",
		Name:        "Encoded",
		DefaultJSON: body{ID: "fork101", Message: "Forked project"},
	})

	def := kind.Define(Overrides{PartialJSON: map[string]interface{}{"message": "amended"}})

	merged, err := json.Marshal(def.JSON())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"fork101","message":"amended"}`, string(merged))
}

func TestJSONReturnsFreshCopyEachCall(t *testing.T) {
	kind := MustEndpoint(Endpoint{
		URL:         "https://example.com/api",
		Method:      "GET",
		Name:        "Copy",
		DefaultJSON: map[string]interface{}{"a": 1},
	})
	def := kind.Define()

	first := def.JSON().(map[string]interface{})
	first["mutated"] = true

	assert.Equal(t, map[string]interface{}{"a": 1}, def.JSON())
	assert.Equal(t, map[string]interface{}{"a": 1}, kind.DefaultJSON)
}

func TestExplicitJSONWinsOverPartial(t *testing.T) {
	kind := MustEndpoint(Endpoint{
		URL:         "https://example.com/api",
		Method:      "GET",
		Name:        "Explicit",
		DefaultJSON: map[string]interface{}{"a": 1},
	})

	def := kind.Define(Overrides{
		JSON:        map[string]interface{}{"only": "this"},
		PartialJSON: map[string]interface{}{"b": 2},
	})

	assert.Equal(t, map[string]interface{}{"only": "this"}, def.JSON())
}

func TestFailureResolution(t *testing.T) {
	timeout := errors.New("connection timed out")

	kind := MustEndpoint(Endpoint{
		URL:            "https://example.com/api/push",
		Method:         "POST",
		Name:           "PushTimeout",
		DefaultFailure: timeout,
	})

	def := kind.Define()
	assert.ErrorIs(t, def.Failure(), timeout)

	override := kind.Define(Overrides{Failure: Failf("timeout", "no response from %s", "example.com")})
	require.Error(t, override.Failure())
	assert.EqualError(t, override.Failure(), "timeout: no response from example.com")
}

func TestFailfResolvesFreshErrors(t *testing.T) {
	f := Failf("reset", "connection reset by peer")
	first := f.Resolve()
	second := f.Resolve()
	require.Error(t, first)
	assert.EqualError(t, second, "reset: connection reset by peer")
	assert.NotSame(t, first, second)
}

func TestNewEndpointValidation(t *testing.T) {
	tests := []struct {
		name     string
		endpoint Endpoint
		wantErr  string
	}{
		{
			name:     "url of wrong type",
			endpoint: Endpoint{URL: 1, Method: "GET", Name: "Push"},
			wantErr:  `the "url" attribute of endpoint kind "Push" must be of type string or *regexp.Regexp, got int: 1`,
		},
		{
			name:     "missing name",
			endpoint: Endpoint{URL: "https://example.com", Method: "GET"},
			wantErr:  "endpoint kind requires a name",
		},
		{
			name:     "failure of wrong type",
			endpoint: Endpoint{URL: "https://example.com", Method: "GET", Name: "Push", DefaultFailure: "NotAnError"},
			wantErr:  `the "default_failure" attribute of endpoint kind "Push" must be of type error, Failure or func() error, got string: NotAnError`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEndpoint(tt.endpoint)
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestNewEndpointAcceptsRegexpURL(t *testing.T) {
	pattern := regexp.MustCompile(`https://example\.com/api/.*`)
	kind, err := NewEndpoint(Endpoint{URL: pattern, Method: "GET", Name: "Any"})
	require.NoError(t, err)
	assert.Same(t, pattern, kind.Define().URL())
}

func TestEndpointFromAttrs(t *testing.T) {
	kind, err := EndpointFromAttrs("Fork", map[string]interface{}{
		"url":                 "https://example.com/api/fork",
		"method":              "POST",
		"default_status_code": float64(200),
		"default_json":        map[string]interface{}{"id": "fork101"},
	})
	require.NoError(t, err)

	def := kind.Define()
	assert.Equal(t, "Fork", def.Name())
	assert.Equal(t, "POST", def.Method())
	assert.Equal(t, 200, def.StatusCode())
	assert.Equal(t, map[string]interface{}{"id": "fork101"}, def.JSON())
}

func TestEndpointFromAttrsValidation(t *testing.T) {
	tests := []struct {
		name    string
		attr    string
		value   interface{}
		wantErr string
	}{
		{
			name:    "method",
			attr:    "method",
			value:   200,
			wantErr: `the "method" attribute of endpoint kind "MockEndpoint" must be of type string, got int: 200`,
		},
		{
			name:    "name",
			attr:    "name",
			value:   false,
			wantErr: `the "name" attribute of endpoint kind "MockEndpoint" must be of type string, got bool: false`,
		},
		{
			name:    "default_status_code",
			attr:    "default_status_code",
			value:   "NotAnInt",
			wantErr: `the "default_status_code" attribute of endpoint kind "MockEndpoint" must be of type int, got string: NotAnInt`,
		},
		{
			name:    "default_text",
			attr:    "default_text",
			value:   123,
			wantErr: `the "default_text" attribute of endpoint kind "MockEndpoint" must be of type string, got int: 123`,
		},
		{
			name:    "default_failure",
			attr:    "default_failure",
			value:   "NotAnError",
			wantErr: `the "default_failure" attribute of endpoint kind "MockEndpoint" must be of type error, Failure or func() error, got string: NotAnError`,
		},
		{
			name:    "url",
			attr:    "url",
			value:   1,
			wantErr: `the "url" attribute of endpoint kind "MockEndpoint" must be of type string or *regexp.Regexp, got int: 1`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := map[string]interface{}{
				"url":    "https://example.com",
				"method": "GET",
			}
			attrs[tt.attr] = tt.value

			_, err := EndpointFromAttrs("MockEndpoint", attrs)
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestEndpointFromAttrsCompilesPattern(t *testing.T) {
	kind, err := EndpointFromAttrs("Any", map[string]interface{}{
		"pattern": `/api/.*`,
		"method":  "GET",
	})
	require.NoError(t, err)

	pattern, ok := kind.Define().URL().(*regexp.Regexp)
	require.True(t, ok)
	assert.True(t, pattern.MatchString("/api/fork"))
}

func TestEndpointFromAttrsFractionalStatusCode(t *testing.T) {
	_, err := EndpointFromAttrs("Bad", map[string]interface{}{
		"url":                 "https://example.com",
		"method":              "GET",
		"default_status_code": 200.5,
	})
	require.Error(t, err)
	assert.EqualError(t, err, `the "default_status_code" attribute of endpoint kind "Bad" must be of type int, got float64: 200.5`)
}

func TestDefinitionString(t *testing.T) {
	kind := MustEndpoint(Endpoint{
		URL:               "https://example.com/api/push",
		Method:            "POST",
		Name:              "Push",
		DefaultStatusCode: 200,
	})
	assert.Equal(t, "Push(url=https://example.com/api/push, method=POST, status_code=200)", kind.Define().String())
}
