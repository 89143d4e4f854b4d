package model

// CourseClassCSVRow is one line of classes_per_uc.csv.
type CourseClassCSVRow struct {
	CourseID  string `csv:"UcCode"`
	SectionID string `csv:"ClassCode"`
}

// SlotCSVRow is one line of classes.csv. Times stay textual until parsed
// into decimals by the loader.
type SlotCSVRow struct {
	SectionID string `csv:"ClassCode"`
	CourseID  string `csv:"UcCode"`
	Weekday   string `csv:"Weekday"`
	StartHour string `csv:"StartHour"`
	Duration  string `csv:"Duration"`
	Type      string `csv:"Type"`
}

// EnrollmentCSVRow is one line of students_classes.csv.
type EnrollmentCSVRow struct {
	StudentID   string `csv:"StudentCode"`
	StudentName string `csv:"StudentName"`
	CourseID    string `csv:"UcCode"`
	SectionID   string `csv:"ClassCode"`
}

// RequestCSVRow is one line of a batch requests file.
type RequestCSVRow struct {
	StudentID string `csv:"StudentCode"`
	CourseID  string `csv:"UcCode"`
	SectionID string `csv:"ClassCode"`
}
