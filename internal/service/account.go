package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ronak-Malkan/assignexpert/internal/crypto"
	"github.com/Ronak-Malkan/assignexpert/internal/model"
	"github.com/Ronak-Malkan/assignexpert/internal/policy"
)

// Preferences every new account starts with, regardless of what the
// signup request carried.
const (
	DefaultUITheme     = "light"
	DefaultEditorTheme = "monokai"
)

// AccountService orchestrates signup and profile updates against the
// account directory. One instance is wired at startup and shared.
type AccountService struct {
	directory AccountDirectory
}

func NewAccountService(directory AccountDirectory) *AccountService {
	return &AccountService{directory: directory}
}

// SignupStudent creates the base account and its student record. The two
// writes are not transactional: a failure between them leaves an account
// with no role record.
func (s *AccountService) SignupStudent(ctx context.Context, account *model.Account, student *model.StudentRecord) error {
	if err := s.signup(ctx, account); err != nil {
		return err
	}
	student.AccountID = account.ID
	return s.directory.InsertStudent(ctx, *student)
}

func (s *AccountService) SignupFaculty(ctx context.Context, account *model.Account, faculty *model.FacultyRecord) error {
	if err := s.signup(ctx, account); err != nil {
		return err
	}
	faculty.AccountID = account.ID
	return s.directory.InsertFaculty(ctx, *faculty)
}

func (s *AccountService) signup(ctx context.Context, account *model.Account) error {
	if !policy.ValidateEmail(account.Email) {
		return ErrInvalidEmailFormat
	}
	if !policy.ValidatePassword(account.Password) {
		return ErrInvalidPasswordFormat
	}

	existing, err := s.directory.GetAccountByEmail(ctx, account.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err == nil && existing.ID != "" {
		return ErrEmailExists
	}

	account.UITheme = DefaultUITheme
	account.EditorTheme = DefaultEditorTheme
	account.WantsEmailNotifications = true

	hash, err := crypto.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	account.Password = hash

	id, err := s.directory.InsertAccount(ctx, *account)
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

// UpdateProfile applies the fields present in the patch, each as an
// independent directory call. A failure part-way leaves the earlier
// updates applied.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, update model.ProfileUpdate) error {
	if update.FirstName != nil {
		if err := s.UpdateFirstName(ctx, accountID, *update.FirstName); err != nil {
			return err
		}
	}
	if update.LastName != nil {
		if err := s.UpdateLastName(ctx, accountID, *update.LastName); err != nil {
			return err
		}
	}
	if update.OldPassword != nil && update.NewPassword != nil {
		if err := s.UpdatePassword(ctx, accountID, *update.OldPassword, *update.NewPassword); err != nil {
			return err
		}
	}
	if update.Preferences != nil {
		if err := s.UpdatePreferences(ctx, accountID, *update.Preferences); err != nil {
			return err
		}
	}
	return nil
}

func (s *AccountService) UpdateFirstName(ctx context.Context, accountID, firstName string) error {
	return s.directory.UpdateFirstName(ctx, accountID, firstName)
}

func (s *AccountService) UpdateLastName(ctx context.Context, accountID, lastName string) error {
	return s.directory.UpdateLastName(ctx, accountID, lastName)
}

func (s *AccountService) UpdatePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	account, err := s.directory.GetAccountByID(ctx, accountID)
	if errors.Is(err, ErrNotFound) {
		return ErrUpdateFieldRejected
	}
	if err != nil {
		return err
	}
	if account.ID == "" {
		return ErrUpdateFieldRejected
	}

	if err := crypto.CheckPassword(account.Password, oldPassword); err != nil {
		return ErrUpdateFieldRejected
	}
	if !policy.ValidatePassword(newPassword) {
		return ErrInvalidPasswordFormat
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.directory.UpdatePassword(ctx, account.ID, hash)
}

// UpdatePreferences merges the incoming triple with the account's current
// values; absent fields keep what is stored. The merged triple is persisted
// as a single write.
func (s *AccountService) UpdatePreferences(ctx context.Context, accountID string, prefs model.PreferencesUpdate) error {
	account, err := s.directory.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	uiTheme := account.UITheme
	if prefs.UITheme != nil {
		uiTheme = *prefs.UITheme
	}
	editorTheme := account.EditorTheme
	if prefs.EditorTheme != nil {
		editorTheme = *prefs.EditorTheme
	}
	wantsEmailNotifications := account.WantsEmailNotifications
	if prefs.WantsEmailNotifications != nil {
		wantsEmailNotifications = *prefs.WantsEmailNotifications
	}

	return s.directory.UpdatePreferences(ctx, accountID, uiTheme, editorTheme, wantsEmailNotifications)
}

func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	return s.directory.DeleteAccount(ctx, id)
}
