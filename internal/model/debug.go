package model

// Header is a user-entered HTTP header applied to every outgoing request.
type Header struct {
	Key   string `json:"key" mapstructure:"key" yaml:"key"`
	Value string `json:"value" mapstructure:"value" yaml:"value"`
}

// TokenRule copies a value out of a JSON response into the global headers.
type TokenRule struct {
	Enabled     bool   `json:"enabled"`
	PathPattern string `json:"pathPattern"`
	JSONPath    string `json:"jsonPath"`
	HeaderKey   string `json:"headerKey"`
	Prefix      string `json:"prefix"`
}

// Active reports whether the rule takes part in extraction.
func (r TokenRule) Active() bool {
	return r.Enabled && r.JSONPath != "" && r.HeaderKey != ""
}

type Environment struct {
	Name    string `json:"name" mapstructure:"name" yaml:"name"`
	BaseURL string `json:"baseUrl" mapstructure:"base_url" yaml:"base_url"`
}

// ResponseSnapshot is the last response shown for an endpoint.
type ResponseSnapshot struct {
	// Status is the numeric status code as text, or "Error" for transport failures.
	Status     string            `json:"status"`
	StatusCode int               `json:"statusCode,omitempty"`
	ElapsedMs  int64             `json:"time,omitempty"`
	Size       int               `json:"size,omitempty"`
	Content    string            `json:"content"`
	IsError    bool              `json:"isError"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// DebugEntry is the per-endpoint scratch state of the request tester.
type DebugEntry struct {
	Params     map[string]string `json:"params"`
	Body       string            `json:"body"`
	BodyFields map[string]string `json:"bodyFields,omitempty"`
	Response   *ResponseSnapshot `json:"response"`
}

func NewDebugEntry() DebugEntry {
	return DebugEntry{Params: map[string]string{}}
}
