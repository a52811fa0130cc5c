package usecase

import (
	"context"
	"sort"
	"time"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// HealthReport lists the state of every registered dependency.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type HealthUsecase interface {
	Check(ctx context.Context) HealthReport
}

type healthUsecase struct {
	required map[string]HealthCheck
	optional map[string]HealthCheck
	timeout  time.Duration
}

// NewHealthUsecase reports "ok" while every required check passes. Optional
// checks only mark the report "degraded".
func NewHealthUsecase(required, optional map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{required: required, optional: optional, timeout: 2 * time.Second}
}

func (u *healthUsecase) Check(ctx context.Context) HealthReport {
	report := HealthReport{Status: "ok", Checks: map[string]string{}}

	run := func(checks map[string]HealthCheck, failStatus string) {
		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			checkCtx, cancel := context.WithTimeout(ctx, u.timeout)
			err := checks[name](checkCtx)
			cancel()
			if err != nil {
				report.Checks[name] = "down"
				if report.Status != "down" {
					report.Status = failStatus
				}
				continue
			}
			report.Checks[name] = "up"
		}
	}
	run(u.required, "down")
	run(u.optional, "degraded")
	return report
}
