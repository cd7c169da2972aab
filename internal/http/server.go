package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ronak-Malkan/assignexpert/internal/config"
	"github.com/Ronak-Malkan/assignexpert/internal/model"
	"github.com/Ronak-Malkan/assignexpert/internal/service"
)

const sessionCookieName = "session"

type Server struct {
	cfg      config.Config
	accounts *service.AccountService
	sessions *service.SessionManager
	classes  *service.ClassService
	logger   *slog.Logger
	validate *validator.Validate
}

func NewServer(cfg config.Config, accounts *service.AccountService, sessions *service.SessionManager, classes *service.ClassService, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		accounts: accounts,
		sessions: sessions,
		classes:  classes,
		logger:   logger,
		validate: validator.New(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/student", s.handleSignupStudent)
		r.Post("/faculty", s.handleSignupFaculty)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.With(s.sessionMiddleware).Get("/session", s.handleGetSession)
		r.With(s.sessionMiddleware).Put("/", s.handleUpdateProfile)
		r.With(s.sessionMiddleware).Delete("/{accountId}", s.handleDeleteAccount)

		r.Route("/class", func(r chi.Router) {
			r.Use(s.sessionMiddleware)
			r.Post("/insert", s.handleInsertClass)
			r.Post("/join", s.handleJoinClass)
			r.Put("/name", s.handleUpdateClassName)
			r.Get("/members", s.handleGetClassMembers)
			r.Get("/all", s.handleGetAllClasses)
		})
	})

	return r
}

type signupRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

func (s *Server) handleSignupStudent(w http.ResponseWriter, r *http.Request) {
	account, ok := s.decodeSignup(w, r)
	if !ok {
		return
	}

	var student model.StudentRecord
	if err := s.accounts.SignupStudent(r.Context(), account, &student); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": account.ID})
}

func (s *Server) handleSignupFaculty(w http.ResponseWriter, r *http.Request) {
	account, ok := s.decodeSignup(w, r)
	if !ok {
		return
	}

	var faculty model.FacultyRecord
	if err := s.accounts.SignupFaculty(r.Context(), account, &faculty); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": account.ID})
}

func (s *Server) decodeSignup(w http.ResponseWriter, r *http.Request) (*model.Account, bool) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return nil, false
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return nil, false
	}

	return &model.Account{
		Email:     strings.TrimSpace(strings.ToLower(req.Email)),
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, true
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	FirstName               string `json:"firstName"`
	LastName                string `json:"lastName"`
	SessionToken            string `json:"sessionToken"`
	UITheme                 string `json:"uiTheme"`
	EditorTheme             string `json:"editorTheme"`
	WantsEmailNotifications bool   `json:"wantsEmailNotifications"`
	IsStudent               bool   `json:"isStudent"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	result, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		HttpOnly: true,
	}
	// A zero TTL leaves the cookie scoped to the browser session.
	if s.cfg.SessionTTL > 0 {
		cookie.MaxAge = int(s.cfg.SessionTTL.Seconds())
	}
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, loginResponse{
		FirstName:               result.FirstName,
		LastName:                result.LastName,
		SessionToken:            result.SessionToken,
		UITheme:                 result.UITheme,
		EditorTheme:             result.EditorTheme,
		WantsEmailNotifications: result.WantsEmailNotifications,
		IsStudent:               result.IsStudent,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token != "" {
		if err := s.sessions.Logout(r.Context(), token); err != nil {
			s.writeServiceError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionResponse struct {
	AccountID string `json:"accountId"`
	IsStudent bool   `json:"isStudent"`
	StudentID string `json:"studentId,omitempty"`
	FacultyID string `json:"facultyId,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info := sessionFromContext(r.Context())
	if info == nil {
		writeError(w, http.StatusUnauthorized, "missing_session")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		AccountID: info.AccountID,
		IsStudent: info.IsStudent,
		StudentID: info.StudentID,
		FacultyID: info.FacultyID,
	})
}

type preferencesRequest struct {
	UITheme                 *string `json:"uiTheme,omitempty"`
	EditorTheme             *string `json:"editorTheme,omitempty"`
	WantsEmailNotifications *bool   `json:"wantsEmailNotifications,omitempty"`
}

type updateProfileRequest struct {
	FirstName   *string             `json:"firstName,omitempty"`
	LastName    *string             `json:"lastName,omitempty"`
	OldPassword *string             `json:"oldPassword,omitempty"`
	NewPassword *string             `json:"newPassword,omitempty"`
	Preferences *preferencesRequest `json:"preferences,omitempty"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	info := sessionFromContext(r.Context())
	if info == nil {
		writeError(w, http.StatusUnauthorized, "missing_session")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	patch := model.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}
	if req.Preferences != nil {
		patch.Preferences = &model.PreferencesUpdate{
			UITheme:                 req.Preferences.UITheme,
			EditorTheme:             req.Preferences.EditorTheme,
			WantsEmailNotifications: req.Preferences.WantsEmailNotifications,
		}
	}

	if err := s.accounts.UpdateProfile(r.Context(), info.AccountID, patch); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	info := sessionFromContext(r.Context())
	if info == nil {
		writeError(w, http.StatusUnauthorized, "missing_session")
		return
	}

	accountID := chi.URLParam(r, "accountId")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing_account_id")
		return
	}
	if info.AccountID != accountID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := s.accounts.DeleteAccount(r.Context(), accountID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type insertClassRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) handleInsertClass(w http.ResponseWriter, r *http.Request) {
	info := sessionFromContext(r.Context())
	if info == nil {
		writeError(w, http.StatusUnauthorized, "missing_session")
		return
	}

	var req insertClassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	code, err := s.classes.InsertClass(r.Context(), model.Class{
		FacultyID: info.FacultyID,
		Name:      req.Name,
	}, info.IsStudent)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

type joinClassRequest struct {
	Code string `json:"code" validate:"required"`
}

func (s *Server) handleJoinClass(w http.ResponseWriter, r *http.Request) {
	info := sessionFromContext(r.Context())
	if info == nil {
		writeError(w, http.StatusUnauthorized, "missing_session")
		return
	}

	var req joinClassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	if err := s.classes.JoinClass(r.Context(), info.StudentID, req.Code, info.IsStudent); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "joined"})
}

type updateClassNameRequest struct {
	ID      string `json:"id" validate:"required"`
	NewName string `json:"newName" validate:"required"`
}

func (s *Server) handleUpdateClassName(w http.ResponseWriter, r *http.Request) {
	info := sessionFromContext(r.Context())
	if info == nil {
		writeError(w, http.StatusUnauthorized, "missing_session")
		return
	}

	var req updateClassNameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	if err := s.classes.UpdateClassName(r.Context(), req.ID, info.FacultyID, info.IsStudent, req.NewName); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type classMemberSummary struct {
	StudentID string `json:"studentId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (s *Server) handleGetClassMembers(w http.ResponseWriter, r *http.Request) {
	classID := r.URL.Query().Get("id")
	if classID == "" {
		writeError(w, http.StatusBadRequest, "missing_class_id")
		return
	}

	members, err := s.classes.GetAllMembers(r.Context(), classID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := make([]classMemberSummary, 0, len(members))
	for _, member := range members {
		resp = append(resp, classMemberSummary{
			StudentID: member.StudentID,
			FirstName: member.FirstName,
			LastName:  member.LastName,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type classSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Server) handleGetAllClasses(w http.ResponseWriter, r *http.Request) {
	info := sessionFromContext(r.Context())
	if info == nil {
		writeError(w, http.StatusUnauthorized, "missing_session")
		return
	}

	entityID := info.FacultyID
	if info.IsStudent {
		entityID = info.StudentID
	}

	classes, err := s.classes.GetAllClasses(r.Context(), entityID, info.IsStudent)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := make([]classSummary, 0, len(classes))
	for _, class := range classes {
		resp = append(resp, classSummary{ID: class.ID, Name: class.Name, Code: class.Code})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_session")
			return
		}

		info, err := s.sessions.GetSessionInfo(r.Context(), token)
		if err != nil {
			s.logger.Error("session lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if info == nil {
			writeError(w, http.StatusUnauthorized, "invalid_session")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type sessionKey struct{}

func sessionFromContext(ctx context.Context) *model.SessionInfo {
	value := ctx.Value(sessionKey{})
	info, _ := value.(*model.SessionInfo)
	return info
}

// sessionToken reads the token from the Authorization header, falling back
// to the session cookie.
func sessionToken(r *http.Request) string {
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmailFormat):
		writeError(w, http.StatusBadRequest, "invalid_email_format")
	case errors.Is(err, service.ErrInvalidPasswordFormat):
		writeError(w, http.StatusBadRequest, "invalid_password_format")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusConflict, "email_exists")
	case errors.Is(err, service.ErrInvalidEmailPassword):
		writeError(w, http.StatusUnauthorized, "invalid_email_password")
	case errors.Is(err, service.ErrUpdateFieldRejected):
		writeError(w, http.StatusBadRequest, "update_rejected")
	case errors.Is(err, service.ErrInvalidStudentOperation):
		writeError(w, http.StatusBadRequest, "invalid_student_operation")
	case errors.Is(err, service.ErrInvalidFacultyOperation):
		writeError(w, http.StatusBadRequest, "invalid_faculty_operation")
	case errors.Is(err, service.ErrClassNotFound):
		writeError(w, http.StatusBadRequest, "class_not_found")
	default:
		s.logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
