package enrollment

import "errors"

// ErrNotFound is returned when a student or class section does not exist.
var ErrNotFound = errors.New("not found")

// ErrCourseAlreadyHeld is returned when a student would hold two sections
// of the same course.
var ErrCourseAlreadyHeld = errors.New("student already holds a section of this course")

// ErrInconsistentState is returned when rosters and enrolled sets disagree.
var ErrInconsistentState = errors.New("inconsistent enrollment state")
