package utils

import (
	"fmt"
	"time"

	"github.com/go-home-io/wled-effects/providers"
	"gopkg.in/robfig/cron.v2"
)

// Cron implementation.
type provider struct {
	cron *cron.Cron
}

// NewCron creates a new scheduler.
func NewCron() providers.ICronProvider {
	p := provider{
		cron: cron.New(),
	}

	p.cron.Start()
	return &p
}

// AddFunc schedules a new job.
func (p *provider) AddFunc(spec string, cmd func()) (int, error) {
	id, err := p.cron.AddFunc(spec, cmd)
	return int(id), err
}

// RemoveFunc removes scheduled job from cron.
func (p *provider) RemoveFunc(id int) {
	p.cron.Remove(cron.EntryID(id))
}

// Stop halts the scheduler. Running jobs are not interrupted.
func (p *provider) Stop() {
	p.cron.Stop()
}

// EverySpec formats cron spec for a periodic job.
// Cron doesn't support sub-second schedules, so interval is rounded up to a second.
func EverySpec(interval time.Duration) string {
	seconds := int(interval / time.Second)
	if interval%time.Second != 0 {
		seconds++
	}

	if seconds < 1 {
		seconds = 1
	}

	return fmt.Sprintf("@every %ds", seconds)
}

// DailySpec formats cron spec for a job which fires every day at hh:mm.
func DailySpec(hour, minute int) string {
	return fmt.Sprintf("0 %d %d * * *", minute, hour)
}
