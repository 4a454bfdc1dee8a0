package models

// Student is a single record in the record store. The ID is the snapshot map
// key and is not repeated inside the record body.
type Student struct {
	ID    string  `json:"-"`
	Name  string  `json:"name"`
	Major string  `json:"major"`
	GPA   float64 `json:"gpa"`
	Owner string  `json:"owner"`
}

// StudentInput carries the caller-supplied fields for a new record.
type StudentInput struct {
	Name  string  `json:"name"`
	Major string  `json:"major"`
	GPA   float64 `json:"gpa"`
}

// StudentPatch is a partial update. Owner is deliberately absent.
type StudentPatch struct {
	Name  *string  `json:"name,omitempty"`
	Major *string  `json:"major,omitempty"`
	GPA   *float64 `json:"gpa,omitempty"`
}

// Apply merges the provided fields into s.
func (p StudentPatch) Apply(s *Student) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Major != nil {
		s.Major = *p.Major
	}
	if p.GPA != nil {
		s.GPA = *p.GPA
	}
}

// Empty reports whether the patch changes nothing.
func (p StudentPatch) Empty() bool {
	return p.Name == nil && p.Major == nil && p.GPA == nil
}
