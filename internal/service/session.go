package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Ronak-Malkan/assignexpert/internal/crypto"
	"github.com/Ronak-Malkan/assignexpert/internal/model"
)

// SessionManager handles login, logout and session lookup. Sessions live
// only in the session store; evicted or deleted tokens simply stop
// resolving.
type SessionManager struct {
	directory AccountDirectory
	sessions  SessionStore
}

func NewSessionManager(directory AccountDirectory, sessions SessionStore) *SessionManager {
	return &SessionManager{directory: directory, sessions: sessions}
}

type LoginResult struct {
	FirstName               string
	LastName                string
	SessionToken            string
	UITheme                 string
	EditorTheme             string
	WantsEmailNotifications bool
	IsStudent               bool
}

// Login verifies the credentials and issues a session token. An unknown
// email and a wrong password return the same error so callers cannot
// tell which addresses have accounts.
func (m *SessionManager) Login(ctx context.Context, email, password string) (LoginResult, error) {
	account, err := m.directory.GetAccountByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return LoginResult{}, ErrInvalidEmailPassword
	}
	if err != nil {
		return LoginResult{}, err
	}
	if account.ID == "" {
		return LoginResult{}, ErrInvalidEmailPassword
	}

	if err := crypto.CheckPassword(account.Password, password); err != nil {
		return LoginResult{}, ErrInvalidEmailPassword
	}

	info := model.SessionInfo{AccountID: account.ID}
	student, err := m.directory.GetStudentByAccountID(ctx, account.ID)
	switch {
	case err == nil && student.ID != "":
		info.IsStudent = true
		info.StudentID = student.ID
	case err == nil || errors.Is(err, ErrNotFound):
		// An account with neither role record is a data-integrity fault;
		// the lookup error propagates as-is.
		faculty, err := m.directory.GetFacultyByAccountID(ctx, account.ID)
		if err != nil {
			return LoginResult{}, err
		}
		info.FacultyID = faculty.ID
	default:
		return LoginResult{}, err
	}

	token, err := m.createSession(ctx, info)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		FirstName:               account.FirstName,
		LastName:                account.LastName,
		SessionToken:            token,
		UITheme:                 account.UITheme,
		EditorTheme:             account.EditorTheme,
		WantsEmailNotifications: account.WantsEmailNotifications,
		IsStudent:               info.IsStudent,
	}, nil
}

// Logout deletes the session. Deleting an absent token is not an error.
func (m *SessionManager) Logout(ctx context.Context, token string) error {
	return m.sessions.Del(ctx, token)
}

// GetSessionInfo resolves a token to its session payload. Unknown and
// empty tokens return nil; a payload that no longer decodes is an
// infrastructure failure, not an absent session.
func (m *SessionManager) GetSessionInfo(ctx context.Context, token string) (*model.SessionInfo, error) {
	if token == "" {
		return nil, nil
	}

	payload, ok, err := m.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var info model.SessionInfo
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	return &info, nil
}

func (m *SessionManager) createSession(ctx context.Context, info model.SessionInfo) (string, error) {
	token, err := crypto.NewSessionToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	payload, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("encode session payload: %w", err)
	}
	if err := m.sessions.Set(ctx, token, string(payload)); err != nil {
		return "", err
	}
	return token, nil
}
