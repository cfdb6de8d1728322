package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ovtrader/ov-trader/internal/service"
)

// CycleJob triggers a scheduled trading cycle
type CycleJob struct {
	service *service.Service
	log     zerolog.Logger
}

// NewCycleJob creates a job that runs one trading cycle per invocation
func NewCycleJob(svc *service.Service, log zerolog.Logger) *CycleJob {
	return &CycleJob{
		service: svc,
		log:     log.With().Str("job", "cycle").Logger(),
	}
}

// Name returns the job name
func (j *CycleJob) Name() string {
	return "trading_cycle"
}

// Run executes one trading cycle. The cycle itself never returns an
// error; a failed record is surfaced as a job failure for visibility.
func (j *CycleJob) Run() error {
	record := j.service.RunCycle("scheduled cycle", nil)

	if record["status"] == service.StatusFailed {
		return fmt.Errorf("scheduled cycle %v failed", record["id"])
	}

	j.log.Info().
		Interface("record_id", record["id"]).
		Msg("Scheduled cycle completed")
	return nil
}
