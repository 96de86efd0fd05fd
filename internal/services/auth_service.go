package services

import (
	"context"

	"logistics_manager/internal/models"
	"logistics_manager/internal/redis"

	"go.uber.org/zap"
)

// SessionStore opens, reads and closes login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, user *models.User) (string, *redis.SessionData, error)
	Session(ctx context.Context, id string) (*redis.SessionData, error)
	EndSession(ctx context.Context, id string) error
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	SessionID string             `json:"sessionId"`
	Session   *redis.SessionData `json:"session"`
	User      *models.User       `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Session(ctx context.Context, sessionID string) (*redis.SessionData, error)
}

type authService struct {
	users    UserService
	sessions SessionStore
	log      *zap.Logger
}

func NewAuthService(users UserService, sessions SessionStore, log *zap.Logger) AuthService {
	return &authService{users: users, sessions: sessions, log: log.Named("auth")}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	user, err := s.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		s.log.Info("login rejected", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}
	id, data, err := s.sessions.CreateSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", zap.Uint("user_id", user.ID))
	return &LoginResult{SessionID: id, Session: data, User: user}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.EndSession(ctx, sessionID)
}

func (s *authService) Session(ctx context.Context, sessionID string) (*redis.SessionData, error) {
	return s.sessions.Session(ctx, sessionID)
}
