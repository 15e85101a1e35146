// Package cron schedules the daemon's periodic work: resyncing the target
// configuration and pruning old sync history.
package cron

import "context"

// Job is a named task run on a cron schedule.
type Job interface {
	// Name identifies the job in logs. It must be unique per scheduler.
	Name() string

	// Schedule is a standard 5-field expression or a descriptor such as
	// "@daily" or "@every 10m".
	Schedule() string

	// Run performs one tick. It should return promptly once ctx is done.
	Run(ctx context.Context) error
}
