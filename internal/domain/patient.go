package domain

import "time"

// Patient is a person treated by the practice. A patient is identified by
// first name, last name and birth date.
type Patient struct {
	ID        int64
	FirstName string
	LastName  string
	BirthDate string
	Age       int
	Gender    string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PatientFilter narrows patient listings.
type PatientFilter struct {
	Search string
	Limit  int
}
