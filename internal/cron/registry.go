package cron

import "context"

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry pairs a job with the UTC hour it should run at, once per day.
type Entry struct {
	Job     Job
	HourUTC int
}

// Registry tracks registered cron jobs and their daily schedule.
type Registry struct {
	entries []Entry
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a job that fires at the given UTC hour. Hours outside 0-23
// are clamped into range.
func (r *Registry) Register(job Job, hourUTC int) {
	if job == nil {
		return
	}
	if hourUTC < 0 {
		hourUTC = 0
	}
	if hourUTC > 23 {
		hourUTC = 23
	}
	r.entries = append(r.entries, Entry{Job: job, HourUTC: hourUTC})
}

// Entries returns the registered jobs in the order they were added.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}
