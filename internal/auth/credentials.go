package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// Credentials are the login inputs for the CRM.
type Credentials struct {
	AccessToken   string
	Username      string
	Password      string
	SecurityToken string
	ClientID      string
	ClientSecret  string
	LoginURL      string
}

// FromEnv reads credentials from the environment (and anything viper has
// bound, such as .env files loaded at startup).
func FromEnv() Credentials {
	c := Credentials{
		AccessToken:   config.GetString(EnvAccessToken),
		Username:      config.GetString(EnvUsername),
		Password:      config.GetString(EnvPassword),
		SecurityToken: config.GetString(EnvSecurityToken),
		ClientID:      config.GetString(EnvClientID),
		ClientSecret:  config.GetString(EnvClientSecret),
		LoginURL:      config.GetString(EnvLoginURL),
	}
	if c.LoginURL == "" {
		c.LoginURL = constants.DefaultLoginURL
	}
	return c
}

// Method reports which login flow the credentials select. A static access
// token wins over a password grant.
func (c Credentials) Method() Method {
	switch {
	case c.AccessToken != "":
		return MethodToken
	case c.Username != "" || c.Password != "" || c.ClientID != "":
		return MethodPassword
	default:
		return MethodNone
	}
}

// TokenURL is the OAuth2 token endpoint under LoginURL.
func (c Credentials) TokenURL() string {
	return strings.TrimRight(c.LoginURL, "/") + "/services/oauth2/token"
}

// TokenSource returns a token source for the credentials. Password grants
// log in eagerly so bad credentials fail before any job is created; the
// returned source logs in again if the session token ever expires.
func (c Credentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	status := Check(c)
	if status.State != StateConfigured {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnauthenticated, status.Summary)
	}

	if c.Method() == MethodToken {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.AccessToken, TokenType: "Bearer"}), nil
	}

	src := &passwordSource{ctx: ctx, creds: c}
	tok, err := src.Token()
	if err != nil {
		return nil, err
	}
	return oauth2.ReuseTokenSource(tok, src), nil
}

// InstanceURL returns the org URL the login endpoint reported, if any.
func InstanceURL(tok *oauth2.Token) string {
	if tok == nil {
		return ""
	}
	s, _ := tok.Extra("instance_url").(string)
	return s
}

// passwordSource runs the OAuth2 username-password flow. The security token
// is appended to the password as the login endpoint expects.
type passwordSource struct {
	ctx   context.Context
	creds Credentials
}

func (p *passwordSource) Token() (*oauth2.Token, error) {
	cfg := &oauth2.Config{
		ClientID:     p.creds.ClientID,
		ClientSecret: p.creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  p.creds.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	tok, err := cfg.PasswordCredentialsToken(p.ctx, p.creds.Username, p.creds.Password+p.creds.SecurityToken)
	if err != nil {
		return nil, fmt.Errorf("%w: password login to %s: %v", errors.ErrUnauthenticated, p.creds.LoginURL, err)
	}
	return tok, nil
}
