package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		succeeded bool
		code      Code
		message   string
		payload   string
	}{
		{name: "numeric status with data", status: 200, body: `{"status":1,"data":{"id":7}}`, succeeded: true, payload: `{"id":7}`},
		{name: "boolean status without data", status: 200, body: `{"status":true,"message":"done"}`, succeeded: true, payload: `{"status":true,"message":"done"}`},
		{name: "string success", status: 200, body: `{"status":"success","data":null}`, succeeded: true, payload: `{"status":"success","data":null}`},
		{name: "status zero", status: 200, body: `{"status":0,"error_message":"Website already exists."}`, code: CodeDomainConflict, message: "Website already exists."},
		{name: "null status", status: 200, body: `{"status":null}`, code: CodeUnknown, message: "Unknown error"},
		{name: "error fallback field", status: 200, body: `{"status":0,"error":"Invalid login details"}`, code: CodeAuthRejected, message: "Invalid login details"},
		{name: "api access disabled", status: 200, body: `{"error_message":"API Access Disabled"}`, code: CodeAuthRejected, message: "API Access Disabled"},
		{name: "missing keys", status: 200, body: `{"result":"ok"}`, code: CodeInvalidFormat, message: "Invalid response format"},
		{name: "array body", status: 200, body: `[1,2]`, code: CodeInvalidFormat, message: "Invalid response format"},
		{name: "http error", status: 500, body: `{"status":1}`, code: CodeTransport, message: "HTTP 500 Internal Server Error"},
		{name: "uppercase success is failure", status: 200, body: `{"status":"SUCCESS"}`, code: CodeUnknown, message: "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.status, []byte(tt.body))
			assert.Equal(t, tt.succeeded, got.Succeeded)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.message, got.ErrorMessage)
			if tt.succeeded {
				assert.JSONEq(t, tt.payload, string(got.Payload))
			}
		})
	}
}

func TestNormalize_NotJSON(t *testing.T) {
	got := Normalize(200, []byte("<html>login</html>"))
	assert.False(t, got.Succeeded)
	assert.Equal(t, CodeParse, got.Code)
	assert.Contains(t, got.ErrorMessage, "invalid JSON response")
}

func TestNormalize_ForwardsMessage(t *testing.T) {
	got := Normalize(200, []byte(`{"status":1,"message":"Website created"}`))
	assert.True(t, got.Succeeded)
	assert.Equal(t, "Website created", got.Message)
	assert.Empty(t, got.Code)
	assert.Empty(t, got.ErrorMessage)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, CodeAuthRejected, Classify("Unauthorized request"))
	assert.Equal(t, CodeDomainConflict, Classify("This domain exists already"))
	assert.Equal(t, CodeUnknown, Classify("disk quota exceeded"))
}
