// internal/analytics/compute.go
package analytics

import (
	"sort"
	"strconv"
	"strings"

	"mergington-activities/internal/models"
)

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// Options carries the configurable constants of the analytics.
type Options struct {
	HoursPerSession float64
	// Placeholders reported for every student until attendance and
	// completion are tracked.
	AttendanceRate int
	CompletionRate int
}

func DefaultOptions() Options {
	return Options{HoursPerSession: 1.5, AttendanceRate: 95, CompletionRate: 90}
}

// EstimateWeeklyHours counts the distinct weekday names Monday..Friday that
// appear in schedule and multiplies by hoursPerSession. Matching is a case
// sensitive substring test, so "Tuesdays" counts as Tuesday and "monday"
// does not count.
func EstimateWeeklyHours(schedule string, hoursPerSession float64) float64 {
	days := 0
	for _, day := range weekdays {
		if strings.Contains(schedule, day) {
			days++
		}
	}
	return float64(days) * hoursPerSession
}

// Student builds the analytics of one email. An email enrolled nowhere gets
// zero totals, not an error.
func Student(catalog models.Catalog, email string, opts Options) *models.StudentAnalytics {
	out := &models.StudentAnalytics{
		Email:          email,
		Activities:     []models.EnrolledActivity{},
		AttendanceRate: opts.AttendanceRate,
		CompletionRate: opts.CompletionRate,
	}
	for _, a := range catalog {
		if !contains(a.Participants, email) {
			continue
		}
		out.Activities = append(out.Activities, models.EnrolledActivity{Name: a.Name, Schedule: a.Schedule})
		out.HoursPerWeek += EstimateWeeklyHours(a.Schedule, opts.HoursPerSession)
	}
	out.TotalEnrolled = len(out.Activities)
	return out
}

// Activity builds the analytics of a single activity. SpotsAvailable goes
// negative when the activity is over capacity.
func Activity(a models.Activity) *models.ActivityAnalytics {
	participants := a.Participants
	if participants == nil {
		participants = []string{}
	}
	count := len(participants)
	return &models.ActivityAnalytics{
		Name:                a.Name,
		Description:         a.Description,
		Schedule:            a.Schedule,
		EnrollmentCount:     count,
		MaxParticipants:     a.MaxParticipants,
		CapacityUtilization: percent(count, a.MaxParticipants),
		SpotsAvailable:      a.MaxParticipants - count,
		Participants:        participants,
	}
}

// Overview aggregates the whole catalogue. ActivityStats is ordered by
// enrollment, largest first; ties keep catalogue order.
func Overview(catalog models.Catalog) *models.OverviewAnalytics {
	out := &models.OverviewAnalytics{
		TotalActivities: len(catalog),
		ActivityStats:   make([]models.ActivityStat, 0, len(catalog)),
	}

	students := make(map[string]struct{})
	totalEnrollment := 0
	for _, a := range catalog {
		for _, p := range a.Participants {
			students[p] = struct{}{}
		}
		count := len(a.Participants)
		totalEnrollment += count
		out.TotalCapacity += a.MaxParticipants
		out.ActivityStats = append(out.ActivityStats, models.ActivityStat{
			Name:        a.Name,
			Enrollment:  count,
			Capacity:    a.MaxParticipants,
			Utilization: percent(count, a.MaxParticipants),
		})
	}

	out.TotalStudents = len(students)
	if len(catalog) > 0 {
		out.AverageEnrollment = round1(float64(totalEnrollment) / float64(len(catalog)))
	}
	out.OverallUtilization = percent(totalEnrollment, out.TotalCapacity)

	sort.SliceStable(out.ActivityStats, func(i, j int) bool {
		return out.ActivityStats[i].Enrollment > out.ActivityStats[j].Enrollment
	})
	return out
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

// round1 rounds to one decimal place using the exact binary value of x,
// with ties going to the even digit.
func round1(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		return x
	}
	return r
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
