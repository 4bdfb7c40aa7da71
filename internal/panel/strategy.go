package panel

// Credentials identify the panel account used for every call.
type Credentials struct {
	BaseURL  string
	Username string
	Token    string
	Password string
}

// Configured reports whether the panel location and account are known.
func (c Credentials) Configured() bool {
	return c.BaseURL != "" && c.Username != ""
}

// Strategy is one way of authenticating a request. It only contributes
// headers and body fields; the request itself is built by the negotiator.
type Strategy struct {
	Name          string
	Authorization string
	BodyFields    map[string]any
}

const (
	StrategyToken    = "token"
	StrategyPassword = "password"
)

// Strategies returns the applicable strategies in the order they are tried.
func Strategies(creds Credentials) []Strategy {
	var out []Strategy
	if creds.Token != "" {
		out = append(out, Strategy{Name: StrategyToken, Authorization: creds.Token})
	}
	if creds.Password != "" {
		out = append(out, Strategy{
			Name:       StrategyPassword,
			BodyFields: map[string]any{"password": creds.Password},
		})
	}
	return out
}

// Decision tells the negotiator what to do after an attempt.
type Decision int

const (
	Return Decision = iota
	NextStrategy
)

func (d Decision) String() string {
	if d == NextStrategy {
		return "next_strategy"
	}
	return "return"
}

// Decide is the fallback policy. Only failures that another credential could
// plausibly fix move on to the next strategy; a panel-reported domain error is
// final, as is a well-formed answer we could not interpret.
func Decide(r Result) Decision {
	if r.Succeeded {
		return Return
	}
	switch r.Code {
	case CodeTransport, CodeTimeout, CodeParse, CodeAuthRejected:
		return NextStrategy
	default:
		return Return
	}
}

// requestBody merges the routing fields, the strategy's fields and the
// operation parameters. Parameters may shadow strategy fields but never the
// routing fields.
func requestBody(operation, username string, strategy Strategy, params map[string]any) map[string]any {
	body := make(map[string]any, len(params)+len(strategy.BodyFields)+2)
	for k, v := range strategy.BodyFields {
		body[k] = v
	}
	for k, v := range params {
		body[k] = v
	}
	body["controller"] = operation
	body["serverUserName"] = username
	return body
}
