// Package analytics implements the risk and progress computation engine.
//
// Every function is a pure transform over an in-memory table snapshot and an
// explicit as-of date. Nothing here reads the wall clock, performs I/O, or
// mutates its inputs, so calls are safe to run concurrently over a shared
// read-only snapshot.
package analytics

import (
	"time"

	"github.com/noah-isme/lms-insights-api/internal/models"
)

// DateOf truncates a timestamp to its calendar date (midnight UTC).
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AsOf derives the reference "today" for one computation: the maximum date
// present in the daily KPI table, or now() when the table is empty. Callers
// compute it once per dashboard request and thread the result through every
// other analytics call so all sub-calculations share one day boundary.
func AsOf(kpis []models.DailyCourseKPI, now func() time.Time) time.Time {
	if len(kpis) == 0 {
		return DateOf(now())
	}
	max := kpis[0].Date
	for _, k := range kpis[1:] {
		if k.Date.After(max) {
			max = k.Date
		}
	}
	return DateOf(max)
}
