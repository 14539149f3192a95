package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/sw-qps/hlsrun/internal/log"
)

// ArtifactStatus is the result of an existence check. Contents are never read.
type ArtifactStatus struct {
	Artifact
	Exists bool
	Size   int64
	Err    error // set when the path can't be checked or has the wrong kind
}

type JobSummary struct {
	Name      string
	State     State
	ExitCode  int
	Log       ArtifactStatus
	Artifacts []ArtifactStatus
}

type Summary struct {
	Jobs []JobSummary
}

// Missing counts logs and artifacts which do not exist.
func (s Summary) Missing() int {
	var n int
	for _, j := range s.Jobs {
		if !j.Log.Exists {
			n++
		}
		for _, a := range j.Artifacts {
			if !a.Exists {
				n++
			}
		}
	}
	return n
}

// Summarize checks the log and the declared artifacts of every job of the
// session, whether or not it was launched. Problems are part of the result,
// never returned as an error. A job which never launched and one still
// producing its artifacts look the same here.
func (s *Supervisor) Summarize(ctx context.Context, sess *Session) Summary {
	ret := Summary{Jobs: make([]JobSummary, 0, len(sess.specs))}
	for _, spec := range sess.specs {
		js := JobSummary{
			Name:     spec.Name,
			State:    sess.State(spec.Name),
			ExitCode: -1,
			Log:      statArtifact(Artifact{Path: spec.LogPath, Kind: ArtifactFile}),
		}
		if h, ok := sess.handles[spec.Name]; ok && h.state == StateCompleted {
			js.ExitCode = h.exitCode
		}
		for _, a := range spec.Artifacts {
			js.Artifacts = append(js.Artifacts, statArtifact(a))
		}

		jctx := log.ContextAttrs(ctx, slog.String("job_name", spec.Name))
		for _, a := range append([]ArtifactStatus{js.Log}, js.Artifacts...) {
			if !a.Exists {
				slog.DebugContext(jctx, "artifact missing", "path", a.Path, "kind", a.Kind.String(), "error", a.Err)
			}
		}
		ret.Jobs = append(ret.Jobs, js)
	}
	return ret
}

func statArtifact(a Artifact) ArtifactStatus {
	st := ArtifactStatus{Artifact: a}
	info, err := os.Stat(a.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return st
	case err != nil:
		st.Err = err
		return st
	}

	switch a.Kind {
	case ArtifactDir:
		if !info.IsDir() {
			st.Err = fmt.Errorf("%s: not a directory", a.Path)
			return st
		}
	default:
		if !info.Mode().IsRegular() {
			st.Err = fmt.Errorf("%s: not a regular file", a.Path)
			return st
		}
	}
	st.Exists = true
	st.Size = info.Size()
	return st
}
