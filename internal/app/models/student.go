package models

// Student defines a student record
type Student struct {
	ID                 string `json:"id" db:"id"` // Opaque store identifier
	RegistrationNumber string `json:"matricula" db:"registration_number" label:"matricula" validate:"notblank"` // Unique registration number
	Name               string `json:"nome" db:"name" label:"nome" validate:"notblank"` // Student's full name
	SubjectID          string `json:"disciplinaId" db:"subject_id" label:"disciplina" validate:"required"` // Subject the student is tied to

	// Relations (populated when needed)
	Subject *Subject `json:"disciplina,omitempty" db:"-"`
}

// SubjectName returns the resolved subject's name, or an empty string
func (s *Student) SubjectName() string {
	if s.Subject == nil {
		return ""
	}
	return s.Subject.Name
}

// StudentFilter narrows student listings
type StudentFilter struct {
	// NameContains is matched case-insensitively as a literal substring
	NameContains string
}
