package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-insights-api/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestDateOfTruncatesToMidnightUTC(t *testing.T) {
	assert.Equal(t, day(2025, 10, 10), DateOf(at(2025, 10, 10, 23, 59)))
	assert.Equal(t, day(2025, 10, 10), DateOf(day(2025, 10, 10)))
}

func TestAsOfUsesMaxKPIDate(t *testing.T) {
	kpis := []models.DailyCourseKPI{
		{CourseID: 1, Date: day(2025, 10, 8)},
		{CourseID: 2, Date: day(2025, 10, 10)},
		{CourseID: 1, Date: day(2025, 10, 9)},
	}
	now := func() time.Time { return at(2026, 1, 1, 12, 0) }

	assert.Equal(t, day(2025, 10, 10), AsOf(kpis, now))
}

func TestAsOfFallsBackToNowWhenNoKPIs(t *testing.T) {
	now := func() time.Time { return at(2025, 10, 10, 15, 30) }

	assert.Equal(t, day(2025, 10, 10), AsOf(nil, now))
}

func TestScopeContains(t *testing.T) {
	scope := ScopeOf(1, 3)

	assert.True(t, scope.Contains(1))
	assert.False(t, scope.Contains(2))
	assert.True(t, Scope(nil).Contains(2))
	assert.False(t, ScopeOf().Contains(1))
}
