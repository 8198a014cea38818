package service

import "errors"

var (
	// ErrValidation wraps every rejected input; the message says which field.
	ErrValidation = errors.New("validation failed")

	// ErrUserNotFound indicates no user matched the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidPassword indicates the submitted password does not match.
	ErrInvalidPassword = errors.New("invalid password")

	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("patient already exists")

	ErrConsultationNotFound      = errors.New("consultation not found")
	ErrConsultationAlreadyExists = errors.New("consultation already exists")
)
