package model

import "strings"

// ClassID identifies one section of a course.
type ClassID struct {
	CourseID  string `json:"course_id"`
	SectionID string `json:"section_id"`
}

// Compare orders identities by course code, then section code.
func (c ClassID) Compare(other ClassID) int {
	if course := strings.Compare(c.CourseID, other.CourseID); course != 0 {
		return course
	}
	return strings.Compare(c.SectionID, other.SectionID)
}

func (c ClassID) Less(other ClassID) bool {
	return c.Compare(other) < 0
}

// SameCourse reports whether both identities belong to the same course,
// regardless of section.
func (c ClassID) SameCourse(other ClassID) bool {
	return c.CourseID == other.CourseID
}

func (c ClassID) String() string {
	return c.CourseID + "/" + c.SectionID
}
