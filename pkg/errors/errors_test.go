package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestAPIError(t *testing.T) {
	t.Run("message carries stage and body", func(t *testing.T) {
		err := pkgerrors.NewAPIError("create ingest job", 400, `[{"errorCode":"INVALIDJOB"}]`)
		assert.Equal(t, `create ingest job failed (status 400): [{"errorCode":"INVALIDJOB"}]`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrRemote))
		assert.False(t, errors.Is(err, pkgerrors.ErrUnauthenticated))
	})

	t.Run("401 is unauthenticated", func(t *testing.T) {
		err := pkgerrors.NewAPIError("create query job", 401, "INVALID_SESSION_ID")
		assert.True(t, errors.Is(err, pkgerrors.ErrUnauthenticated))
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("donors: %w", pkgerrors.NewAPIError("upload batch", 500, "oops"))
		var apiErr *pkgerrors.APIError
		assert.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 500, apiErr.StatusCode)
	})
}

func TestJobFailedError(t *testing.T) {
	err := &pkgerrors.JobFailedError{JobID: "750x", Object: "Account", State: "Failed", Message: "Row limit exceeded"}
	assert.Equal(t, "bulk job 750x on Account ended Failed: Row limit exceeded", err.Error())
	assert.True(t, pkgerrors.IsJobFailed(err))
	assert.True(t, pkgerrors.IsJobFailed(pkgerrors.WrapStage("donors", err)))
}

func TestTimeoutError(t *testing.T) {
	err := pkgerrors.NewTimeoutError("poll ingest job 750x", "30m0s", "job still InProgress")
	assert.Contains(t, err.Error(), "timed out after 30m0s")
	assert.True(t, pkgerrors.IsTimeout(err))
}

func TestMissingColumnError(t *testing.T) {
	t.Run("with source", func(t *testing.T) {
		err := &pkgerrors.MissingColumnError{Source: "lastmile_rescues.csv", Column: "Weight"}
		assert.Equal(t, `lastmile_rescues.csv: missing expected column "Weight"`, err.Error())
		assert.True(t, pkgerrors.IsInvalidInput(err))
	})

	t.Run("without source", func(t *testing.T) {
		err := &pkgerrors.MissingColumnError{Column: "Name"}
		assert.Equal(t, `missing expected column "Name"`, err.Error())
	})
}

func TestLookupError(t *testing.T) {
	err := &pkgerrors.LookupError{Entity: "parent account", Key: "Acme Corp"}
	assert.Contains(t, err.Error(), `"Acme Corp"`)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvariant))
}

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.ConfigError
		want string
	}{
		{
			name: "section key file",
			err:  &pkgerrors.ConfigError{Section: "GeneralConfiguration", Key: "uri", File: "config.ini", Message: "missing"},
			want: "configuration error: GeneralConfiguration.uri in config.ini: missing",
		},
		{
			name: "key only",
			err:  &pkgerrors.ConfigError{Key: "uri", Message: "missing"},
			want: "configuration error: uri: missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, errors.Is(tt.err, pkgerrors.ErrConfig))
		})
	}
}

func TestStageError(t *testing.T) {
	base := errors.New("boom")
	err := pkgerrors.WrapStage("volunteers", base)
	assert.Equal(t, `stage "volunteers": boom`, err.Error())
	assert.ErrorIs(t, err, base)
	assert.Nil(t, pkgerrors.WrapStage("volunteers", nil))
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapIO("read", "x.csv", nil))
	assert.Nil(t, pkgerrors.WrapParse("csv", "x.csv", nil))

	ioErr := pkgerrors.WrapIO("read", "x.csv", errors.New("denied"))
	assert.Equal(t, "IO error during read of x.csv: denied", ioErr.Error())

	parseErr := pkgerrors.WrapParse("csv", "x.csv", errors.New("bare quote"))
	assert.True(t, pkgerrors.IsInvalidInput(parseErr))
}
