// Package auth resolves CRM credentials and turns them into an OAuth2 token
// source for the Bulk API client.
package auth

// State represents the authentication state of the configured credentials.
type State int

const (
	// StateConfigured means usable credentials are present.
	StateConfigured State = iota
	// StateMissing means required credentials are missing.
	StateMissing
	// StateInvalid means credentials are found but incomplete or malformed.
	StateInvalid
)

// String returns a short label for the state.
func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateMissing:
		return "missing"
	default:
		return "invalid"
	}
}

// Method is the way rescuesync obtains a session token.
type Method string

// Login methods.
const (
	MethodNone     Method = ""
	MethodToken    Method = "access_token"
	MethodPassword Method = "password"
)

// Environment variables holding credentials.
const (
	EnvAccessToken   = "SF_ACCESS_TOKEN"
	EnvUsername      = "SF_USERNAME"
	EnvPassword      = "SF_PASSWORD"
	EnvSecurityToken = "SF_SECURITY_TOKEN"
	EnvClientID      = "SF_CLIENT_ID"
	EnvClientSecret  = "SF_CLIENT_SECRET"
	EnvLoginURL      = "SF_LOGIN_URL"
)

// Status is the result of a local credential check.
type Status struct {
	State   State
	Method  Method
	Summary string   // Brief one-line summary
	Missing []string // Environment variables that must be set
}
