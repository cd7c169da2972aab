package service

import (
	"context"

	"github.com/Ronak-Malkan/assignexpert/internal/model"
)

// AccountDirectory is the persistent store for accounts and role records.
// Lookups return ErrNotFound when no matching record exists; any other
// error is an infrastructure failure the services pass through untouched.
type AccountDirectory interface {
	GetAccountByEmail(ctx context.Context, email string) (model.Account, error)
	GetAccountByID(ctx context.Context, id string) (model.Account, error)
	InsertAccount(ctx context.Context, account model.Account) (string, error)
	InsertStudent(ctx context.Context, student model.StudentRecord) error
	InsertFaculty(ctx context.Context, faculty model.FacultyRecord) error
	GetStudentByAccountID(ctx context.Context, accountID string) (model.StudentRecord, error)
	GetFacultyByAccountID(ctx context.Context, accountID string) (model.FacultyRecord, error)
	UpdateFirstName(ctx context.Context, accountID, firstName string) error
	UpdateLastName(ctx context.Context, accountID, lastName string) error
	UpdatePassword(ctx context.Context, accountID, passwordHash string) error
	UpdatePreferences(ctx context.Context, accountID, uiTheme, editorTheme string, wantsEmailNotifications bool) error
	DeleteAccount(ctx context.Context, id string) error
}

// SessionStore is the volatile key/value store for active sessions.
// Get reports a missing token as ok == false, not as an error.
type SessionStore interface {
	Set(ctx context.Context, token, payload string) error
	Get(ctx context.Context, token string) (payload string, ok bool, err error)
	Del(ctx context.Context, token string) error
}

type ClassDirectory interface {
	InsertClass(ctx context.Context, class model.Class) error
	GetClassByID(ctx context.Context, id string) (model.Class, error)
	GetClassByCode(ctx context.Context, code string) (model.Class, error)
	UpdateClassName(ctx context.Context, classID, name string) error
	InsertMembership(ctx context.Context, classID, studentID string) error
	GetClassMembers(ctx context.Context, classID string) ([]model.ClassMember, error)
	GetClassesByFaculty(ctx context.Context, facultyID string) ([]model.Class, error)
	GetClassesByStudent(ctx context.Context, studentID string) ([]model.Class, error)
}
