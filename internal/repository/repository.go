package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ronak-Malkan/assignexpert/internal/model"
	"github.com/Ronak-Malkan/assignexpert/internal/service"
)

// Store implements service.AccountDirectory and service.ClassDirectory on
// top of a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	var account model.Account
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, first_name, last_name, ui_theme, editor_theme, wants_email_notifications, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`, email)
	err := scanAccount(row, &account)
	return account, err
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (model.Account, error) {
	var account model.Account
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, first_name, last_name, ui_theme, editor_theme, wants_email_notifications, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id)
	err := scanAccount(row, &account)
	return account, err
}

func (s *Store) InsertAccount(ctx context.Context, account model.Account) (string, error) {
	id := account.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, first_name, last_name, ui_theme, editor_theme, wants_email_notifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`, id, account.Email, account.Password, account.FirstName, account.LastName, account.UITheme, account.EditorTheme, account.WantsEmailNotifications)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) InsertStudent(ctx context.Context, student model.StudentRecord) error {
	id := student.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO students (id, account_id)
		VALUES ($1, $2)
	`, id, student.AccountID)
	return err
}

func (s *Store) InsertFaculty(ctx context.Context, faculty model.FacultyRecord) error {
	id := faculty.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO faculty (id, account_id)
		VALUES ($1, $2)
	`, id, faculty.AccountID)
	return err
}

func (s *Store) GetStudentByAccountID(ctx context.Context, accountID string) (model.StudentRecord, error) {
	var student model.StudentRecord
	row := s.pool.QueryRow(ctx, `SELECT id, account_id FROM students WHERE account_id = $1`, accountID)
	if err := row.Scan(&student.ID, &student.AccountID); err != nil {
		return model.StudentRecord{}, mapNoRows(err)
	}
	return student, nil
}

func (s *Store) GetFacultyByAccountID(ctx context.Context, accountID string) (model.FacultyRecord, error) {
	var faculty model.FacultyRecord
	row := s.pool.QueryRow(ctx, `SELECT id, account_id FROM faculty WHERE account_id = $1`, accountID)
	if err := row.Scan(&faculty.ID, &faculty.AccountID); err != nil {
		return model.FacultyRecord{}, mapNoRows(err)
	}
	return faculty, nil
}

func (s *Store) UpdateFirstName(ctx context.Context, accountID, firstName string) error {
	_, err := s.pool.Exec(ctx, `UPDATE accounts SET first_name = $1, updated_at = now() WHERE id = $2`, firstName, accountID)
	return err
}

func (s *Store) UpdateLastName(ctx context.Context, accountID, lastName string) error {
	_, err := s.pool.Exec(ctx, `UPDATE accounts SET last_name = $1, updated_at = now() WHERE id = $2`, lastName, accountID)
	return err
}

func (s *Store) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	_, err := s.pool.Exec(ctx, `UPDATE accounts SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, accountID)
	return err
}

func (s *Store) UpdatePreferences(ctx context.Context, accountID, uiTheme, editorTheme string, wantsEmailNotifications bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE accounts
		SET ui_theme = $1, editor_theme = $2, wants_email_notifications = $3, updated_at = now()
		WHERE id = $4
	`, uiTheme, editorTheme, wantsEmailNotifications, accountID)
	return err
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

func (s *Store) InsertClass(ctx context.Context, class model.Class) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO classes (id, faculty_id, name, code)
		VALUES ($1, $2, $3, $4)
	`, class.ID, class.FacultyID, class.Name, class.Code)
	return err
}

func (s *Store) GetClassByID(ctx context.Context, id string) (model.Class, error) {
	var class model.Class
	row := s.pool.QueryRow(ctx, `SELECT id, faculty_id, name, code FROM classes WHERE id = $1`, id)
	if err := row.Scan(&class.ID, &class.FacultyID, &class.Name, &class.Code); err != nil {
		return model.Class{}, mapNoRows(err)
	}
	return class, nil
}

func (s *Store) GetClassByCode(ctx context.Context, code string) (model.Class, error) {
	var class model.Class
	row := s.pool.QueryRow(ctx, `SELECT id, faculty_id, name, code FROM classes WHERE code = $1`, code)
	if err := row.Scan(&class.ID, &class.FacultyID, &class.Name, &class.Code); err != nil {
		return model.Class{}, mapNoRows(err)
	}
	return class, nil
}

func (s *Store) UpdateClassName(ctx context.Context, classID, name string) error {
	_, err := s.pool.Exec(ctx, `UPDATE classes SET name = $1 WHERE id = $2`, name, classID)
	return err
}

func (s *Store) InsertMembership(ctx context.Context, classID, studentID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO class_members (class_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, classID, studentID)
	return err
}

func (s *Store) GetClassMembers(ctx context.Context, classID string) ([]model.ClassMember, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT st.id, st.account_id, a.first_name, a.last_name
		FROM class_members cm
		JOIN students st ON st.id = cm.student_id
		JOIN accounts a ON a.id = st.account_id
		WHERE cm.class_id = $1
		ORDER BY a.last_name, a.first_name
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.ClassMember
	for rows.Next() {
		var member model.ClassMember
		if err := rows.Scan(&member.StudentID, &member.AccountID, &member.FirstName, &member.LastName); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (s *Store) GetClassesByFaculty(ctx context.Context, facultyID string) ([]model.Class, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, faculty_id, name, code FROM classes WHERE faculty_id = $1 ORDER BY name`, facultyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClasses(rows)
}

func (s *Store) GetClassesByStudent(ctx context.Context, studentID string) ([]model.Class, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.faculty_id, c.name, c.code
		FROM class_members cm
		JOIN classes c ON c.id = cm.class_id
		WHERE cm.student_id = $1
		ORDER BY c.name
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClasses(rows)
}

func collectClasses(rows pgx.Rows) ([]model.Class, error) {
	var classes []model.Class
	for rows.Next() {
		var class model.Class
		if err := rows.Scan(&class.ID, &class.FacultyID, &class.Name, &class.Code); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

func scanAccount(row pgx.Row, account *model.Account) error {
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Password,
		&account.FirstName,
		&account.LastName,
		&account.UITheme,
		&account.EditorTheme,
		&account.WantsEmailNotifications,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return mapNoRows(err)
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return service.ErrNotFound
	}
	return err
}
