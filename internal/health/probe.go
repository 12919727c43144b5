package health

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// StartProbing runs Readiness on the given cron schedule (standard five-field
// syntax or descriptors such as "@every 30s") so the health_check_up gauge
// stays current between /readyz scrapes. The returned stop function waits for
// a running probe to finish.
func (c *Checker) StartProbing(ctx context.Context, schedule string) (stop func(), err error) {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("parse probe schedule %q: %w", schedule, err)
	}

	runner := cron.New()
	runner.Schedule(sched, cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		c.Readiness(ctx)
	}))
	runner.Start()

	return func() { <-runner.Stop().Done() }, nil
}
