package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/princinho/eventsbackend/logger"
	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/repositories"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const notifyTimeout = 10 * time.Second

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     models.Role
	Avatar   string
}

type Session struct {
	User   *models.User
	Tokens *models.TokenPair
}

type AuthService struct {
	users    UserDirectory
	tokens   *TokenService
	hasher   CredentialHasher
	notifier NotificationSink
	log      *zap.Logger

	pending   sync.WaitGroup
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserDirectory, tokens *TokenService, hasher CredentialHasher, notifier NotificationSink, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		log:      log,
	}
}

// Register creates an organizer or user account. Admin accounts cannot self-register.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Role == models.RoleAdmin {
		return nil, ErrInvalidRole
	}
	return s.CreateUser(ctx, in)
}

// CreateUser creates an account with any valid role, admin included.
func (s *AuthService) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.Username) == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &models.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        email,
		PasswordHash: hash,
		Avatar:       in.Avatar,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		var dup *repositories.DuplicateError
		if errors.As(err, &dup) && dup.Field == "username" {
			return nil, ErrUsernameAlreadyInUse
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, err
	}

	s.notifyRegistered(ctx, user)
	return user, nil
}

// notifyRegistered sends the welcome notice in the background. Failures are logged only.
func (s *AuthService) notifyRegistered(ctx context.Context, user *models.User) {
	if s.notifier == nil {
		return
	}
	notice := *user
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyRegistered(ctx, &notice); err != nil {
			logger.LogError(s.log.With(zap.String("user_id", notice.ID.Hex())), "welcome notification failed", err)
		}
	}()
}

// Wait blocks until background notifications have finished.
func (s *AuthService) Wait() {
	s.pending.Wait()
}

// Login never reveals whether the email exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.Verify(password, s.dummy())
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	tokensIssuedTotal.WithLabelValues("login").Inc()
	return &Session{User: user, Tokens: tokens}, nil
}

const dummyPassword = "not-a-real-password"

// dummy returns the hash compared against for unknown emails. It is never empty.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err == nil && hash != "" {
			s.dummyHash = hash
			return
		}
		logger.LogError(s.log, "failed to build dummy credential hash", err)
		fallback, _ := bcrypt.GenerateFromPassword([]byte(dummyPassword), bcrypt.DefaultCost)
		s.dummyHash = string(fallback)
	})
	return s.dummyHash
}

// Refresh trades a refresh token for a new pair. Any verification failure is ErrInvalidCredentials.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	tokens, err := s.tokens.Rotate(ctx, refreshToken, func(ctx context.Context, subject bson.ObjectID) error {
		user, err := s.users.FindByID(ctx, subject)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrPrincipalNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	tokensIssuedTotal.WithLabelValues("refresh").Inc()
	return tokens, nil
}

// Authenticate resolves the user behind an access token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	subject, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrPrincipalNotFound
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID bson.ObjectID, current, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrPrincipalNotFound
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// SeedAdmin makes sure an admin account exists for email. It reports whether one was created.
func (s *AuthService) SeedAdmin(ctx context.Context, seeder UserSeeder, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, ErrInvalidInput
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	return seeder.EnsureUser(ctx, &models.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
