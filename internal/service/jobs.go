package service

import (
	"path/filepath"

	"github.com/sw-qps/hlsrun/internal/model"
)

// JobsFromConfig builds the job matrix: variant-major, then patterns in
// config order. All paths are rooted in dir, which is also the working
// directory of every job. tool is the executable chosen by preflight.
func JobsFromConfig(cfg model.Config, dir, tool string) []JobSpec {
	jobs := cfg.Jobs
	ret := make([]JobSpec, 0, len(jobs.Variants)*len(jobs.Patterns))
	for _, variant := range jobs.Variants {
		for _, pattern := range jobs.Patterns {
			name := model.JobName(pattern, variant)
			path := func(tmpl string) string {
				return filepath.Join(dir, model.Expand(tmpl, name, pattern))
			}
			ret = append(ret, JobSpec{
				Name:    name,
				Path:    tool,
				Args:    []string{cfg.Tool.ScriptFlag, model.Expand(jobs.Script, name, pattern)},
				Dir:     dir,
				LogPath: path(jobs.Log),
				Artifacts: []Artifact{
					{Path: path(jobs.Results), Kind: ArtifactFile},
					{Path: path(jobs.Project), Kind: ArtifactDir},
				},
			})
		}
	}
	return ret
}

// Scripts lists the script path of every job, rooted in dir.
func Scripts(cfg model.Config, dir string) []string {
	jobs := cfg.Jobs
	ret := make([]string, 0, len(jobs.Variants)*len(jobs.Patterns))
	for _, variant := range jobs.Variants {
		for _, pattern := range jobs.Patterns {
			name := model.JobName(pattern, variant)
			ret = append(ret, filepath.Join(dir, model.Expand(jobs.Script, name, pattern)))
		}
	}
	return ret
}
