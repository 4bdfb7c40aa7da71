package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategies_Order(t *testing.T) {
	got := Strategies(Credentials{Token: "Basic t", Password: "p"})
	require.Len(t, got, 2)
	assert.Equal(t, StrategyToken, got[0].Name)
	assert.Equal(t, "Basic t", got[0].Authorization)
	assert.Equal(t, StrategyPassword, got[1].Name)
	assert.Empty(t, got[1].Authorization)
	assert.Equal(t, "p", got[1].BodyFields["password"])

	assert.Empty(t, Strategies(Credentials{BaseURL: "https://x", Username: "admin"}))
}

func TestDecide(t *testing.T) {
	assert.Equal(t, Return, Decide(Result{Succeeded: true}))
	for _, code := range []Code{CodeTransport, CodeTimeout, CodeParse, CodeAuthRejected} {
		assert.Equal(t, NextStrategy, Decide(failure(code, "x")), code)
	}
	for _, code := range []Code{CodeDomainConflict, CodeUnknown, CodeInvalidFormat} {
		assert.Equal(t, Return, Decide(failure(code, "x")), code)
	}
}

func TestRequestBody_RoutingFieldsWin(t *testing.T) {
	body := requestBody("fetchWebsites", "admin", Strategy{Name: StrategyPassword, BodyFields: map[string]any{"password": "p"}},
		map[string]any{"controller": "evil", "serverUserName": "root", "page": 1})

	assert.Equal(t, "fetchWebsites", body["controller"])
	assert.Equal(t, "admin", body["serverUserName"])
	assert.Equal(t, "p", body["password"])
	assert.Equal(t, 1, body["page"])
}
