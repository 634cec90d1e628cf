package model

import "time"

// CourseRunState describes the enrollment availability of a course run.
type CourseRunState string

const (
	CourseRunStateOngoingOpen   CourseRunState = "ongoing_open"
	CourseRunStateFutureOpen    CourseRunState = "future_open"
	CourseRunStateArchivedOpen  CourseRunState = "archived_open"
	CourseRunStateFutureNotYet  CourseRunState = "future_not_yet_open"
	CourseRunStateOngoingClosed CourseRunState = "ongoing_closed"
	CourseRunStateArchived      CourseRunState = "archived_closed"
	CourseRunStateToBeScheduled CourseRunState = "to_be_scheduled"
)

// CourseRun is a scheduled session of a course.
type CourseRun struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	State CourseRunState `json:"state"`
	Start time.Time      `json:"start"`
	End   time.Time      `json:"end"`
}

// IsOpen reports whether the run currently accepts enrollments.
func (r CourseRun) IsOpen() bool {
	switch r.State {
	case CourseRunStateOngoingOpen, CourseRunStateFutureOpen, CourseRunStateArchivedOpen:
		return true
	}
	return false
}

// Course groups the runs a product targets.
type Course struct {
	Code       string      `json:"code"`
	Title      string      `json:"title"`
	CourseRuns []CourseRun `json:"course_runs"`
}

// HasOpenCourseRun reports whether at least one run accepts enrollments.
func (c Course) HasOpenCourseRun() bool {
	for _, r := range c.CourseRuns {
		if r.IsOpen() {
			return true
		}
	}
	return false
}

// Enrollment links a user to a course run.
type Enrollment struct {
	ID        string    `json:"id"`
	CourseRun CourseRun `json:"course_run"`
	IsActive  bool      `json:"is_active"`
}
