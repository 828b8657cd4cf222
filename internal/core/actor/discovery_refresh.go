package actor

import (
	"context"
	"fmt"

	"github.com/berfenger/eta2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/quartz"
)

const (
	DISCOVERY_REFRESH_JOB = "ha-discovery-refresh"
)

// DiscoveryRefreshJob asks the master actor to publish discovery again.
type DiscoveryRefreshJob struct {
	root   *actor.RootContext
	master *actor.PID
}

var _ quartz.Job = (*DiscoveryRefreshJob)(nil)

func NewDiscoveryRefreshJob(root *actor.RootContext, master *actor.PID) *DiscoveryRefreshJob {
	return &DiscoveryRefreshJob{
		root:   root,
		master: master,
	}
}

func (j *DiscoveryRefreshJob) Execute(_ context.Context) error {
	j.root.Send(j.master, domain.RepublishDiscoveryRequest{})
	return nil
}

func (j *DiscoveryRefreshJob) Description() string {
	return DISCOVERY_REFRESH_JOB
}

// ScheduleDiscoveryRefresh registers job on sched with a quartz cron
// expression (seconds field first).
func ScheduleDiscoveryRefresh(sched quartz.Scheduler, cronExpr string, job quartz.Job) error {
	trigger, err := quartz.NewCronTrigger(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid discovery refresh cron %q: %w", cronExpr, err)
	}
	return sched.ScheduleJob(quartz.NewJobDetail(job, quartz.NewJobKey(DISCOVERY_REFRESH_JOB)), trigger)
}
