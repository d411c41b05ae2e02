package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"spellinghive/internal/database"
	"spellinghive/internal/logger"
	"spellinghive/internal/models"
	"spellinghive/internal/repository"
	"spellinghive/internal/validation"
)

// DefaultGrade is used when a profile is created without a grade
const DefaultGrade = 2

// WelcomeNotifier is told when a learner profile is created
type WelcomeNotifier interface {
	NotifyWelcome(ctx context.Context, user *models.UserProfile) error
}

// NewUser is the input for CreateUser
type NewUser struct {
	Name          string
	Grade         int
	GuardianEmail string
}

// UserService manages learner profiles
type UserService struct {
	db       *database.DB
	users    *repository.UserRepository
	avatars  *repository.AvatarRepository
	notifier WelcomeNotifier
	log      *logger.Logger
}

// NewUserService creates a new user service. notifier may be nil.
func NewUserService(db *database.DB, users *repository.UserRepository, avatars *repository.AvatarRepository, notifier WelcomeNotifier, log *logger.Logger) *UserService {
	return &UserService{
		db:       db,
		users:    users,
		avatars:  avatars,
		notifier: notifier,
		log:      log.With("service", "user"),
	}
}

// CreateUser creates a profile and its starting avatar together
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (*models.UserProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.GuardianEmail = strings.TrimSpace(in.GuardianEmail)
	if in.Grade == 0 {
		in.Grade = DefaultGrade
	}
	if err := validation.First(
		validation.ValidateName(in.Name),
		validation.ValidateGrade(in.Grade),
		validation.ValidateOptionalEmail(in.GuardianEmail),
	); err != nil {
		return nil, err
	}

	user := &models.UserProfile{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Grade:         in.Grade,
		GuardianEmail: in.GuardianEmail,
	}
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.avatars.Initialize(ctx, user.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("User created", "user_id", user.ID, "grade", user.Grade)
	if s.notifier != nil && user.GuardianEmail != "" {
		if err := s.notifier.NotifyWelcome(ctx, user); err != nil {
			s.log.Warn("Failed to send welcome email", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

// GetUser returns a profile, or nil when it does not exist
func (s *UserService) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns all profiles, newest first
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	return s.users.List(ctx)
}
