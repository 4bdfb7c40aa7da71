// Package panel talks to the hosting control panel's cloud API.
//
// Every operation is a POST of {controller, serverUserName, ...params} to a single
// endpoint. The panel's answers are loosely shaped, so each raw response is
// normalized into a Result, and credentials are negotiated per call: the token
// strategy first, the password strategy second, stopping early on success or on
// an error that is not about credentials.
package panel

import "encoding/json"

// Code classifies a failed Result. The empty code means success.
type Code string

const (
	CodeNone           Code = ""
	CodeNotConfigured  Code = "NOT_CONFIGURED"
	CodeNoAuthMethod   Code = "NO_AUTH_METHOD"
	CodeTransport      Code = "TRANSPORT"
	CodeTimeout        Code = "TIMEOUT"
	CodeParse          Code = "PARSE"
	CodeInvalidFormat  Code = "INVALID_FORMAT"
	CodeAuthRejected   Code = "AUTH_REJECTED"
	CodeDomainConflict Code = "DOMAIN_CONFLICT"
	CodeUnknown        Code = "UNKNOWN"
	CodeAllAuthFailed  Code = "ALL_AUTH_FAILED"
)

const (
	msgNotConfigured = "CyberPanel not configured"
	msgNoAuthMethod  = "No authentication method available (need token or password)"
	msgAllAuthFailed = "All authentication methods failed"
	msgInvalidFormat = "Invalid response format"
	msgUnknownError  = "Unknown error"
)

// Result is the uniform outcome of a panel operation. Callers branch on
// Succeeded and Code, never on HTTP status.
type Result struct {
	Succeeded    bool            `json:"succeeded"`
	Payload      json.RawMessage `json:"data,omitempty"`
	Message      string          `json:"message,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
	Code         Code            `json:"code,omitempty"`
}

// Err returns the failure text, or "" for a successful result.
func (r Result) Err() string {
	if r.Succeeded {
		return ""
	}
	return r.ErrorMessage
}

func success(payload json.RawMessage, message string) Result {
	return Result{Succeeded: true, Payload: payload, Message: message}
}

func failure(code Code, message string) Result {
	return Result{Succeeded: false, Code: code, ErrorMessage: message}
}

// Failure builds a failed result outside the HTTP path, e.g. for input the
// panel would reject anyway.
func Failure(code Code, message string) Result {
	return failure(code, message)
}
