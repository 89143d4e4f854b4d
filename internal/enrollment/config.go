package enrollment

type Configuration struct {
	ClassesPerCourseFile string
	ClassesFile          string
	StudentsFile         string
	RequestsFile         string
	ExportFile           string
	Delimiter            rune
	// A course whose largest and smallest sections differ by SpreadLimit or
	// more accepts no further requests.
	SpreadLimit int
	// Per-section ceiling is total/CeilingDivisor + CeilingBase.
	CeilingDivisor       int
	CeilingBase          int
	StopOnIntegrityError bool
	ValidateBeforeBatch  bool
}

func NewDefaultConfiguration() *Configuration {
	return &Configuration{
		ClassesPerCourseFile: "./data/classes_per_uc.csv",
		ClassesFile:          "./data/classes.csv",
		StudentsFile:         "./data/students_classes.csv",
		RequestsFile:         "./data/requests.csv",
		ExportFile:           "./data/students_classes.csv",
		Delimiter:            ',',
		SpreadLimit:          4,
		CeilingDivisor:       16,
		CeilingBase:          4,
		StopOnIntegrityError: false,
		ValidateBeforeBatch:  true,
	}
}

// Ceiling returns the largest roster a section may already have and still
// accept a student, given the course's total enrollment.
func (c *Configuration) Ceiling(total int) int {
	divisor := c.CeilingDivisor
	if divisor <= 0 {
		divisor = 1
	}
	return total/divisor + c.CeilingBase
}
