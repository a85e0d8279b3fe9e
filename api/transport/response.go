package transport

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusError   = "error"

	CodeInternal = "INTERNAL"
	CodeDegraded = "DEGRADED"
)

// Envelope wraps every local API response. Error carries the form banner
// for failed session operations; Meta carries screen state the UI should
// redraw alongside it.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: err, Meta: meta}
}

// Encode marshals the envelope. A payload that cannot be encoded degrades to
// a bare internal error so the client always receives valid JSON.
func (e Envelope) Encode() []byte {
	out, err := json.Marshal(e)
	if err != nil {
		out, _ = json.Marshal(Envelope{Status: StatusError, Code: CodeInternal, Error: "response encoding failed"})
	}
	return out
}
