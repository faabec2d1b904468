package models

// Subject defines a course/discipline. Subjects are created on first reference.
type Subject struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"nome" db:"name" label:"nome" validate:"notblank"`
}
