package panel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// errorVocabulary maps known panel error phrases to codes. Matching is a
// case-sensitive substring test; the panel publishes no error codes of its own.
var errorVocabulary = []struct {
	code    Code
	phrases []string
}{
	{code: CodeAuthRejected, phrases: []string{"Invalid login", "Unauthorized", "API Access Disabled"}},
	{code: CodeDomainConflict, phrases: []string{"already exist", "Already exist", "exists already"}},
}

// Classify returns the code for a panel-reported error message.
func Classify(message string) Code {
	for _, entry := range errorVocabulary {
		for _, phrase := range entry.phrases {
			if strings.Contains(message, phrase) {
				return entry.code
			}
		}
	}
	return CodeUnknown
}

// Normalize turns a raw panel HTTP response into a Result.
func Normalize(httpStatus int, body []byte) Result {
	if httpStatus < http.StatusOK || httpStatus >= http.StatusMultipleChoices {
		return failure(CodeTransport, fmt.Sprintf("HTTP %d %s", httpStatus, http.StatusText(httpStatus)))
	}

	body = bytes.TrimSpace(body)
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return failure(CodeParse, "invalid JSON response: "+err.Error())
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return failure(CodeInvalidFormat, msgInvalidFormat)
	}

	status, hasStatus := fields["status"]
	_, hasErrorMessage := fields["error_message"]
	if !hasStatus && !hasErrorMessage {
		return failure(CodeInvalidFormat, msgInvalidFormat)
	}

	if hasStatus && isSuccessStatus(status) {
		payload := json.RawMessage(body)
		if data, ok := fields["data"]; ok && !isNull(data) {
			payload = data
		}
		return success(payload, text(fields["message"]))
	}

	message := text(fields["error_message"])
	if message == "" {
		message = text(fields["error"])
	}
	if message == "" {
		message = msgUnknownError
	}
	return failure(Classify(message), message)
}

func isSuccessStatus(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch typed := v.(type) {
	case float64:
		return typed == 1
	case bool:
		return typed
	case string:
		return typed == "success"
	default:
		return false
	}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// text renders a scalar JSON value as a string; null and "" yield "".
func text(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
