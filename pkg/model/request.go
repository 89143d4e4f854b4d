package model

// Reason is the verdict attached to a processed request.
type Reason string

const (
	ReasonAccepted        Reason = "accepted"
	ReasonCollision       Reason = "collision"
	ReasonCapacity        Reason = "capacity"
	ReasonAlreadyEnrolled Reason = "already-enrolled"
)

// Request asks to move a student into Desired, leaving whatever section of
// the same course the student currently holds.
type Request struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	Desired   ClassID `json:"desired"`
}

// Outcome records how a request was decided.
type Outcome struct {
	Request Request `json:"request"`
	Reason  Reason  `json:"reason"`
}

func (o Outcome) Accepted() bool {
	return o.Reason == ReasonAccepted
}
