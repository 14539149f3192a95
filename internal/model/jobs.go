package model

import (
	"fmt"
	"strings"
)

// JobName joins a pattern and a variant suffix, e.g. "uniform" + "_aggressive".
func JobName(pattern, variant string) string {
	return pattern + variant
}

// Expand substitutes {job} and {pattern} placeholders in a path template.
func Expand(template, job, pattern string) string {
	return strings.NewReplacer("{job}", job, "{pattern}", pattern).Replace(template)
}

// Validate reports duplicates in the matrix, which would produce clashing
// job names and log files.
func (j Jobs) Validate() error {
	seen := make(map[string]struct{}, len(j.Patterns)*len(j.Variants))
	for _, v := range j.Variants {
		for _, p := range j.Patterns {
			name := JobName(p, v)
			if _, ok := seen[name]; ok {
				return fmt.Errorf("%w: job %q", ErrDuplicateMatrix, name)
			}
			seen[name] = struct{}{}
		}
	}
	return nil
}

// Validate checks constraints the schema can't express.
func (c Config) Validate() error {
	if c.Version != 0 {
		return fmt.Errorf("%w: %d, expected 0", ErrUnsupportedVersion, c.Version)
	}
	if err := c.Jobs.Validate(); err != nil {
		return err
	}
	if _, _, err := c.Supervisor.Durations(); err != nil {
		return err
	}
	if _, err := ParseDuration(c.Tool.ProbeTimeout); err != nil {
		return fmt.Errorf("parsing tool.probe_timeout: %w", err)
	}
	return nil
}
