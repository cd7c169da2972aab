package model

import "time"

// Account is the base identity record shared by students and faculty.
// Password holds the bcrypt hash once the account has been persisted.
type Account struct {
	ID                      string
	Email                   string
	Password                string
	FirstName               string
	LastName                string
	UITheme                 string
	EditorTheme             string
	WantsEmailNotifications bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type StudentRecord struct {
	ID        string
	AccountID string
}

type FacultyRecord struct {
	ID        string
	AccountID string
}

// SessionInfo is the payload stored against a session token. Exactly one
// of StudentID/FacultyID is set, matching IsStudent.
type SessionInfo struct {
	AccountID string `json:"accountId"`
	IsStudent bool   `json:"isStudent"`
	StudentID string `json:"studentId,omitempty"`
	FacultyID string `json:"facultyId,omitempty"`
}

// ProfileUpdate is a sparse patch. Nil fields are left untouched; the
// password pair is only applied when both halves are present.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	OldPassword *string
	NewPassword *string
	Preferences *PreferencesUpdate
}

type PreferencesUpdate struct {
	UITheme                 *string
	EditorTheme             *string
	WantsEmailNotifications *bool
}

type Class struct {
	ID        string
	FacultyID string
	Name      string
	Code      string
}

type ClassMember struct {
	StudentID string
	AccountID string
	FirstName string
	LastName  string
}
