package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ronak-Malkan/assignexpert/internal/model"
)

const classCodeLength = 6

const classCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ClassService handles class creation and membership. Only faculty create
// and rename classes; only students join them.
type ClassService struct {
	directory ClassDirectory
}

func NewClassService(directory ClassDirectory) *ClassService {
	return &ClassService{directory: directory}
}

// InsertClass creates a class owned by the given faculty and returns the
// join code students use to enroll.
func (s *ClassService) InsertClass(ctx context.Context, class model.Class, isStudent bool) (string, error) {
	if isStudent {
		return "", ErrInvalidStudentOperation
	}

	class.ID = uuid.NewString()
	code, err := newClassCode()
	if err != nil {
		return "", fmt.Errorf("generate class code: %w", err)
	}
	class.Code = code

	if err := s.directory.InsertClass(ctx, class); err != nil {
		return "", err
	}
	return class.Code, nil
}

func (s *ClassService) JoinClass(ctx context.Context, studentID, code string, isStudent bool) error {
	if !isStudent {
		return ErrInvalidFacultyOperation
	}

	class, err := s.directory.GetClassByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return ErrClassNotFound
	}
	if err != nil {
		return err
	}

	return s.directory.InsertMembership(ctx, class.ID, studentID)
}

func (s *ClassService) UpdateClassName(ctx context.Context, classID, facultyID string, isStudent bool, newName string) error {
	if isStudent {
		return ErrInvalidStudentOperation
	}

	class, err := s.directory.GetClassByID(ctx, classID)
	if errors.Is(err, ErrNotFound) {
		return ErrClassNotFound
	}
	if err != nil {
		return err
	}
	if class.FacultyID != facultyID {
		return ErrInvalidFacultyOperation
	}

	return s.directory.UpdateClassName(ctx, classID, newName)
}

func (s *ClassService) GetAllMembers(ctx context.Context, classID string) ([]model.ClassMember, error) {
	if _, err := s.directory.GetClassByID(ctx, classID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return s.directory.GetClassMembers(ctx, classID)
}

func (s *ClassService) GetAllClasses(ctx context.Context, entityID string, isStudent bool) ([]model.Class, error) {
	if isStudent {
		return s.directory.GetClassesByStudent(ctx, entityID)
	}
	return s.directory.GetClassesByFaculty(ctx, entityID)
}

func newClassCode() (string, error) {
	buf := make([]byte, classCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = classCodeAlphabet[int(b)%len(classCodeAlphabet)]
	}
	return string(buf), nil
}
