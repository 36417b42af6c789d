// internal/models/analytics.go
package models

type EnrolledActivity struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
}

// StudentAnalytics summarizes one student's enrollments. AttendanceRate and
// CompletionRate are configured placeholders.
type StudentAnalytics struct {
	Email          string             `json:"email"`
	TotalEnrolled  int                `json:"total_enrolled"`
	Activities     []EnrolledActivity `json:"activities"`
	HoursPerWeek   float64            `json:"hours_per_week"`
	AttendanceRate int                `json:"attendance_rate"`
	CompletionRate int                `json:"completion_rate"`
}

type ActivityAnalytics struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Schedule            string   `json:"schedule"`
	EnrollmentCount     int      `json:"enrollment_count"`
	MaxParticipants     int      `json:"max_participants"`
	CapacityUtilization float64  `json:"capacity_utilization"`
	SpotsAvailable      int      `json:"spots_available"`
	Participants        []string `json:"participants"`
}

type ActivityStat struct {
	Name        string  `json:"name"`
	Enrollment  int     `json:"enrollment"`
	Capacity    int     `json:"capacity"`
	Utilization float64 `json:"utilization"`
}

type OverviewAnalytics struct {
	TotalStudents      int            `json:"total_students"`
	TotalActivities    int            `json:"total_activities"`
	AverageEnrollment  float64        `json:"average_enrollment"`
	TotalCapacity      int            `json:"total_capacity"`
	OverallUtilization float64        `json:"overall_utilization"`
	ActivityStats      []ActivityStat `json:"activity_stats"`
}
