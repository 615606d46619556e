package multimock

// ResponsePayload is the sparse set of response fields for one simulated
// call. Exactly one of {Err}, {StatusCode, JSON}, {Text} is meaningful: when
// Err is set the backend returns it instead of producing a response.
type ResponsePayload struct {
	Text       string      `json:"text,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
	JSON       interface{} `json:"json,omitempty"`
	Err        error       `json:"-"`
}

// Sparse converts the payload into a map with the zero fields dropped.
func (p ResponsePayload) Sparse() map[string]interface{} {
	out := make(map[string]interface{})
	if p.Text != "" {
		out["text"] = p.Text
	}
	if p.StatusCode != 0 {
		out["status_code"] = p.StatusCode
	}
	if p.JSON != nil {
		out["json"] = p.JSON
	}
	if p.Err != nil {
		out["err"] = p.Err
	}
	return out
}

// MockConfiguration is the registration record for one endpoint: the URL,
// the upper-cased method and the ordered payload queue the backend serves
// one per matching call, repeating the last.
type MockConfiguration struct {
	URL       interface{}
	Method    string
	Responses []ResponsePayload
}
