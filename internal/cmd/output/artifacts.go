package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lastmilefood/rescuesync/pkg/bulk"
	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/sync"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// ArtifactExt is the extension of every artifact file.
const ArtifactExt = ".tsv"

// ArtifactUnresolved names the report of rescue links that matched nothing.
const ArtifactUnresolved = "unresolved_links"

// Artifacts writes tab-separated report files into a directory.
type Artifacts struct {
	Dir    string
	Logger zerolog.Logger
}

// NewArtifacts returns an artifact writer for dir ("." when empty).
func NewArtifacts(dir string, logger zerolog.Logger) *Artifacts {
	if dir == "" {
		dir = "."
	}
	return &Artifacts{Dir: dir, Logger: logger}
}

// Path returns the file path for an artifact name.
func (a *Artifacts) Path(name string) string {
	return filepath.Join(a.Dir, name+ArtifactExt)
}

// Write stores t as <name>.tsv. An empty table writes nothing and returns
// an empty path.
func (a *Artifacts) Write(name string, t *table.Table) (string, error) {
	if t.Len() == 0 {
		a.Logger.Debug().Str("artifact", name).Msg("Nothing to write")
		return "", nil
	}
	var buf bytes.Buffer
	if err := table.WriteDelimited(&buf, t, '\t'); err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.Dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", a.Dir, err)
	}
	path := a.Path(name)
	if err := os.WriteFile(path, buf.Bytes(), constants.FilePermissions); err != nil {
		return "", errors.WrapIO("write", path, err)
	}
	a.Logger.Info().Str("artifact", path).Int("rows", t.Len()).Msg("Wrote artifact")
	return path, nil
}

// FailedName names the rejected-records report of a job.
func FailedName(job *bulk.JobResult) string {
	return fmt.Sprintf("failed_%s_%s", job.Object, job.ID)
}

// WriteRun stores the rejected records of every job and the unresolved
// links of each stage. It returns the paths written.
func (a *Artifacts) WriteRun(res *sync.Result) ([]string, error) {
	if res == nil {
		return nil, nil
	}
	var paths []string
	for _, job := range res.Jobs() {
		if job == nil || job.FailedRecords == nil {
			continue
		}
		path, err := a.Write(FailedName(job), job.FailedRecords)
		if err != nil {
			return paths, err
		}
		if path != "" {
			paths = append(paths, path)
		}
	}
	for _, st := range res.Stages {
		path, err := a.Write(ArtifactUnresolved+"_"+string(st.Stage), st.Outcome.Unresolved)
		if err != nil {
			return paths, err
		}
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}
