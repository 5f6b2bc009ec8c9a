// Package jobs registers the built-in map/reduce function pairs by name.
package jobs

import (
	"sort"

	"pkg.jsn.cam/forkreduce/jobs/lettercount"
	"pkg.jsn.cam/forkreduce/jobs/linecopy"
	"pkg.jsn.cam/forkreduce/jobs/wordfind"
	"pkg.jsn.cam/forkreduce/pkg/forkreduce"
)

// Job pairs a map function with its reduce function.
type Job struct {
	Map         forkreduce.MapFunc
	Reduce      forkreduce.ReduceFunc
	Description string
}

var registry = map[string]Job{
	"lettercount": {Map: lettercount.Map, Reduce: lettercount.Reduce, Description: lettercount.Description},
	"wordfind":    {Map: wordfind.Map, Reduce: wordfind.Reduce, Description: wordfind.Description},
	"linecopy":    {Map: linecopy.Map, Reduce: linecopy.Reduce, Description: linecopy.Description},
}

// Get looks up a registered job by name.
func Get(name string) (Job, bool) {
	job, ok := registry[name]
	return job, ok
}

// Names lists the registered job names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
