package models

// Account defines a login-capable user of the application
type Account struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email" label:"email" validate:"notblank"`
	PasswordHash string `json:"-" db:"password_hash" label:"senha" validate:"required"` // bcrypt hash (never rendered)
	Name         string `json:"nome" db:"name"` // Optional display name
}

// AccountSummary is the public projection of an Account
type AccountSummary struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

// Summary drops the password hash
func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Name: a.Name, Email: a.Email}
}
