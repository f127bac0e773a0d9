package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/repository"
)

// SessionService tracks login/logout sessions. Session records feed the
// active-trader metrics; they have no balance effect.
type SessionService interface {
	RecordLogin(ctx context.Context, userID string) (*models.SessionLog, error)
	RecordLogout(ctx context.Context, userID string) (*models.SessionLog, error)
	GetUserSessions(ctx context.Context, userID string, limit int) ([]*models.SessionLog, error)
	ActiveTraderCount(ctx context.Context, since time.Time) (int64, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
}

func NewSessionService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
	}
}

// RecordLogin opens a session for the user. A still-open previous session is
// closed first so each user has at most one open session.
func (s *sessionService) RecordLogin(ctx context.Context, userID string) (*models.SessionLog, error) {
	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if _, err := s.sessionRepo.CloseOpenSession(ctx, userID, now); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	session := &models.SessionLog{
		UserID:    userID,
		UserName:  user.Name,
		LoginTime: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	if err := s.userRepo.SetLoginState(ctx, userID, true, now); err != nil {
		return nil, err
	}

	logrus.WithField("user_id", userID).Info("User logged in")
	return session, nil
}

// RecordLogout closes the user's open session and clears the login flag.
func (s *sessionService) RecordLogout(ctx context.Context, userID string) (*models.SessionLog, error) {
	now := time.Now()

	session, err := s.sessionRepo.CloseOpenSession(ctx, userID, now)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err := s.userRepo.SetLoginState(ctx, userID, false, now); err != nil {
		return nil, err
	}

	logrus.WithField("user_id", userID).Info("User logged out")
	return session, nil
}

func (s *sessionService) GetUserSessions(ctx context.Context, userID string, limit int) ([]*models.SessionLog, error) {
	return s.sessionRepo.GetByUser(ctx, userID, limit)
}

func (s *sessionService) ActiveTraderCount(ctx context.Context, since time.Time) (int64, error) {
	return s.sessionRepo.CountActiveSince(ctx, since)
}
