package service

import "errors"

// ErrNotFound is returned by AccountDirectory and ClassDirectory
// implementations when no matching record exists.
var ErrNotFound = errors.New("record not found")

var (
	ErrInvalidEmailFormat    = errors.New("invalid email format")
	ErrInvalidPasswordFormat = errors.New("invalid password format")
	ErrEmailExists           = errors.New("email already exists")
	ErrInvalidEmailPassword  = errors.New("invalid email or password")
	ErrUpdateFieldRejected   = errors.New("cannot update account field")
)

var (
	ErrInvalidStudentOperation = errors.New("operation not permitted for students")
	ErrInvalidFacultyOperation = errors.New("operation not permitted for faculty")
	ErrClassNotFound           = errors.New("class not found")
)
