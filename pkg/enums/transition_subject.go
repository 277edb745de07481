package enums

import "fmt"

// TransitionSubject identifies what kind of record a status transition audits.
type TransitionSubject string

const (
	TransitionSubjectOrder        TransitionSubject = "order"
	TransitionSubjectVerification TransitionSubject = "verification"
)

var validTransitionSubjects = []TransitionSubject{
	TransitionSubjectOrder,
	TransitionSubjectVerification,
}

// String implements fmt.Stringer.
func (s TransitionSubject) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s TransitionSubject) IsValid() bool {
	for _, candidate := range validTransitionSubjects {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTransitionSubject converts raw input into a TransitionSubject.
func ParseTransitionSubject(value string) (TransitionSubject, error) {
	for _, candidate := range validTransitionSubjects {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transition subject %q", value)
}
