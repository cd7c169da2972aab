package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Ronak-Malkan/assignexpert/internal/config"
	"github.com/Ronak-Malkan/assignexpert/internal/model"
	"github.com/Ronak-Malkan/assignexpert/internal/service"
)

type memDirectory struct {
	accounts    map[string]model.Account
	students    map[string]model.StudentRecord
	faculty     map[string]model.FacultyRecord
	classes     map[string]model.Class
	memberships map[string][]string
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		accounts:    make(map[string]model.Account),
		students:    make(map[string]model.StudentRecord),
		faculty:     make(map[string]model.FacultyRecord),
		classes:     make(map[string]model.Class),
		memberships: make(map[string][]string),
	}
}

func (d *memDirectory) GetAccountByEmail(_ context.Context, email string) (model.Account, error) {
	for _, account := range d.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return model.Account{}, service.ErrNotFound
}

func (d *memDirectory) GetAccountByID(_ context.Context, id string) (model.Account, error) {
	account, ok := d.accounts[id]
	if !ok {
		return model.Account{}, service.ErrNotFound
	}
	return account, nil
}

func (d *memDirectory) InsertAccount(_ context.Context, account model.Account) (string, error) {
	account.ID = uuid.NewString()
	d.accounts[account.ID] = account
	return account.ID, nil
}

func (d *memDirectory) InsertStudent(_ context.Context, student model.StudentRecord) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	d.students[student.AccountID] = student
	return nil
}

func (d *memDirectory) InsertFaculty(_ context.Context, faculty model.FacultyRecord) error {
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	d.faculty[faculty.AccountID] = faculty
	return nil
}

func (d *memDirectory) GetStudentByAccountID(_ context.Context, accountID string) (model.StudentRecord, error) {
	student, ok := d.students[accountID]
	if !ok {
		return model.StudentRecord{}, service.ErrNotFound
	}
	return student, nil
}

func (d *memDirectory) GetFacultyByAccountID(_ context.Context, accountID string) (model.FacultyRecord, error) {
	faculty, ok := d.faculty[accountID]
	if !ok {
		return model.FacultyRecord{}, service.ErrNotFound
	}
	return faculty, nil
}

func (d *memDirectory) UpdateFirstName(_ context.Context, accountID, firstName string) error {
	account := d.accounts[accountID]
	account.FirstName = firstName
	d.accounts[accountID] = account
	return nil
}

func (d *memDirectory) UpdateLastName(_ context.Context, accountID, lastName string) error {
	account := d.accounts[accountID]
	account.LastName = lastName
	d.accounts[accountID] = account
	return nil
}

func (d *memDirectory) UpdatePassword(_ context.Context, accountID, passwordHash string) error {
	account := d.accounts[accountID]
	account.Password = passwordHash
	d.accounts[accountID] = account
	return nil
}

func (d *memDirectory) UpdatePreferences(_ context.Context, accountID, uiTheme, editorTheme string, wantsEmailNotifications bool) error {
	account := d.accounts[accountID]
	account.UITheme = uiTheme
	account.EditorTheme = editorTheme
	account.WantsEmailNotifications = wantsEmailNotifications
	d.accounts[accountID] = account
	return nil
}

func (d *memDirectory) DeleteAccount(_ context.Context, id string) error {
	delete(d.accounts, id)
	return nil
}

func (d *memDirectory) InsertClass(_ context.Context, class model.Class) error {
	d.classes[class.ID] = class
	return nil
}

func (d *memDirectory) GetClassByID(_ context.Context, id string) (model.Class, error) {
	class, ok := d.classes[id]
	if !ok {
		return model.Class{}, service.ErrNotFound
	}
	return class, nil
}

func (d *memDirectory) GetClassByCode(_ context.Context, code string) (model.Class, error) {
	for _, class := range d.classes {
		if class.Code == code {
			return class, nil
		}
	}
	return model.Class{}, service.ErrNotFound
}

func (d *memDirectory) UpdateClassName(_ context.Context, classID, name string) error {
	class := d.classes[classID]
	class.Name = name
	d.classes[classID] = class
	return nil
}

func (d *memDirectory) InsertMembership(_ context.Context, classID, studentID string) error {
	d.memberships[classID] = append(d.memberships[classID], studentID)
	return nil
}

func (d *memDirectory) GetClassMembers(_ context.Context, classID string) ([]model.ClassMember, error) {
	var members []model.ClassMember
	for _, studentID := range d.memberships[classID] {
		members = append(members, model.ClassMember{StudentID: studentID})
	}
	return members, nil
}

func (d *memDirectory) GetClassesByFaculty(_ context.Context, facultyID string) ([]model.Class, error) {
	var classes []model.Class
	for _, class := range d.classes {
		if class.FacultyID == facultyID {
			classes = append(classes, class)
		}
	}
	return classes, nil
}

func (d *memDirectory) GetClassesByStudent(_ context.Context, studentID string) ([]model.Class, error) {
	var classes []model.Class
	for classID, students := range d.memberships {
		for _, id := range students {
			if id == studentID {
				classes = append(classes, d.classes[classID])
			}
		}
	}
	return classes, nil
}

type memSessions struct {
	entries map[string]string
}

func (s *memSessions) Set(_ context.Context, token, payload string) error {
	s.entries[token] = payload
	return nil
}

func (s *memSessions) Get(_ context.Context, token string) (string, bool, error) {
	payload, ok := s.entries[token]
	return payload, ok, nil
}

func (s *memSessions) Del(_ context.Context, token string) error {
	delete(s.entries, token)
	return nil
}

func newTestServer(cfg config.Config) *httptest.Server {
	directory := newMemDirectory()
	sessions := &memSessions{entries: make(map[string]string)}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	server := NewServer(
		cfg,
		service.NewAccountService(directory),
		service.NewSessionManager(directory, sessions),
		service.NewClassService(directory),
		logger,
	)
	return httptest.NewServer(server.Router())
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

func signupAndLogin(t *testing.T, app *httptest.Server, role, email string) string {
	t.Helper()
	signup := map[string]interface{}{
		"email":     email,
		"password":  "Abcdef12",
		"firstName": "Test",
		"lastName":  "User",
	}
	resp := doReq(t, http.MethodPost, app.URL+"/api/user/"+role, "", signup)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 signup, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, app.URL+"/api/user/login", "", map[string]interface{}{
		"email":    email,
		"password": "Abcdef12",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 login, got %d", resp.StatusCode)
	}
	var login struct {
		SessionToken string `json:"sessionToken"`
	}
	decodeBody(t, resp, &login)
	if login.SessionToken == "" {
		t.Fatalf("expected session token")
	}
	return login.SessionToken
}

func loginCookie(t *testing.T, app *httptest.Server, email string) *http.Cookie {
	t.Helper()
	resp := doReq(t, http.MethodPost, app.URL+"/api/user/login", "", map[string]interface{}{
		"email":    email,
		"password": "Abcdef12",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 login, got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("expected session cookie")
	return nil
}

func TestLoginCookieTTL(t *testing.T) {
	app := newTestServer(config.Config{SessionTTL: 30 * time.Minute})
	defer app.Close()

	signupAndLogin(t, app, "student", "ttl@example.com")
	cookie := loginCookie(t, app, "ttl@example.com")
	if cookie.MaxAge != 1800 {
		t.Fatalf("expected Max-Age 1800, got %d", cookie.MaxAge)
	}
}

func TestLoginCookieSessionScoped(t *testing.T) {
	app := newTestServer(config.Config{})
	defer app.Close()

	signupAndLogin(t, app, "student", "nottl@example.com")
	cookie := loginCookie(t, app, "nottl@example.com")
	if cookie.MaxAge != 0 {
		t.Fatalf("expected no Max-Age, got %d", cookie.MaxAge)
	}
}

func TestSignupLoginSessionFlow(t *testing.T) {
	app := newTestServer(config.Config{})
	defer app.Close()

	token := signupAndLogin(t, app, "student", "a@b.com")

	// Duplicate signup conflicts.
	resp := doReq(t, http.MethodPost, app.URL+"/api/user/student", "", map[string]interface{}{
		"email":     "a@b.com",
		"password":  "Abcdef12",
		"firstName": "Test",
		"lastName":  "User",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong password is unauthorized.
	resp = doReq(t, http.MethodPost, app.URL+"/api/user/login", "", map[string]interface{}{
		"email":    "a@b.com",
		"password": "WrongPass1",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, app.URL+"/api/user/session", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var session struct {
		AccountID string `json:"accountId"`
		IsStudent bool   `json:"isStudent"`
		StudentID string `json:"studentId"`
	}
	decodeBody(t, resp, &session)
	if session.AccountID == "" || !session.IsStudent || session.StudentID == "" {
		t.Fatalf("unexpected session payload: %+v", session)
	}

	resp = doReq(t, http.MethodPut, app.URL+"/api/user/", token, map[string]interface{}{
		"preferences": map[string]interface{}{"uiTheme": "dark"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, app.URL+"/api/user/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, app.URL+"/api/user/session", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSignupValidation(t *testing.T) {
	app := newTestServer(config.Config{})
	defer app.Close()

	resp := doReq(t, http.MethodPost, app.URL+"/api/user/student", "", map[string]interface{}{
		"email":     "not-an-email",
		"password":  "Abcdef12",
		"firstName": "Test",
		"lastName":  "User",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, app.URL+"/api/user/student", "", map[string]interface{}{
		"email":     "a@b.com",
		"password":  "weak",
		"firstName": "Test",
		"lastName":  "User",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClassEndpoints(t *testing.T) {
	app := newTestServer(config.Config{})
	defer app.Close()

	facultyToken := signupAndLogin(t, app, "faculty", "prof@example.edu")
	studentToken := signupAndLogin(t, app, "student", "stu@example.edu")

	// Students cannot create classes.
	resp := doReq(t, http.MethodPost, app.URL+"/api/user/class/insert", studentToken, map[string]interface{}{
		"name": "Compilers",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, app.URL+"/api/user/class/insert", facultyToken, map[string]interface{}{
		"name": "Compilers",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var created struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &created)
	if created.Code == "" {
		t.Fatalf("expected class code")
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/user/class/join", studentToken, map[string]interface{}{
		"code": created.Code,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Faculty cannot join.
	resp = doReq(t, http.MethodPost, app.URL+"/api/user/class/join", facultyToken, map[string]interface{}{
		"code": created.Code,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, app.URL+"/api/user/class/all", studentToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var classes []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeBody(t, resp, &classes)
	if len(classes) != 1 || classes[0].Name != "Compilers" {
		t.Fatalf("unexpected classes: %+v", classes)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/api/user/class/members?id="+classes[0].ID, facultyToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var members []struct {
		StudentID string `json:"studentId"`
	}
	decodeBody(t, resp, &members)
	if len(members) != 1 {
		t.Fatalf("expected one member, got %d", len(members))
	}
}
