package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lastmilefood/rescuesync/internal/auth"
	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/pkg/reconcile"
	"github.com/lastmilefood/rescuesync/pkg/sync"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    StoreFunc: func(context.Context) (reconcile.Store, error) {
//	        return bulk.New(srv.URI(), tc), nil
//	    },
//	    OutDirFunc: func() string { return t.TempDir() },
//	}
//	cmd := find.NewCommand(mock)
type Mock struct {
	SettingsFunc     func() (*config.Settings, error)
	CredentialsFunc  func() auth.Credentials
	StoreFunc        func(ctx context.Context) (reconcile.Store, error)
	RunOptionsFunc   func() []sync.Option
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	OutDirFunc       func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Settings returns settings using the mock function or empty settings.
func (m *Mock) Settings() (*config.Settings, error) {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return &config.Settings{}, nil
}

// Credentials returns credentials using the mock function or none.
func (m *Mock) Credentials() auth.Credentials {
	if m.CredentialsFunc != nil {
		return m.CredentialsFunc()
	}
	return auth.Credentials{}
}

// Store returns a store using the mock function or nil.
func (m *Mock) Store(ctx context.Context) (reconcile.Store, error) {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx)
	}
	return nil, nil
}

// RunOptions returns run options using the mock function or none.
func (m *Mock) RunOptions() []sync.Option {
	if m.RunOptionsFunc != nil {
		return m.RunOptionsFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// OutDir returns the artifact directory using the mock function or ".".
func (m *Mock) OutDir() string {
	if m.OutDirFunc != nil {
		return m.OutDirFunc()
	}
	return "."
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}

// Ensure Mock implements Application.
var _ Application = (*Mock)(nil)
