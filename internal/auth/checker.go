package auth

import (
	"fmt"
	"strings"
)

// Check inspects credentials without making any network call.
func Check(c Credentials) *Status {
	switch c.Method() {
	case MethodToken:
		return &Status{
			State:   StateConfigured,
			Method:  MethodToken,
			Summary: fmt.Sprintf("Static access token (%s)", EnvAccessToken),
		}
	case MethodPassword:
		var missing []string
		for _, f := range []struct{ env, val string }{
			{EnvUsername, c.Username},
			{EnvPassword, c.Password},
			{EnvClientID, c.ClientID},
			{EnvClientSecret, c.ClientSecret},
		} {
			if f.val == "" {
				missing = append(missing, f.env)
			}
		}
		if len(missing) > 0 {
			return &Status{
				State:   StateInvalid,
				Method:  MethodPassword,
				Summary: "Password login needs " + strings.Join(missing, ", "),
				Missing: missing,
			}
		}
		return &Status{
			State:   StateConfigured,
			Method:  MethodPassword,
			Summary: fmt.Sprintf("Password login as %s via %s", c.Username, c.LoginURL),
		}
	default:
		return &Status{
			State:   StateMissing,
			Summary: fmt.Sprintf("Set %s, or %s and %s with a connected app", EnvAccessToken, EnvUsername, EnvPassword),
			Missing: []string{EnvAccessToken},
		}
	}
}
