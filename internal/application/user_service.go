package application

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/validation"
)

var (
	ErrInvalidCredentials = apperror.Validation("Invalid credentials", nil)
	ErrUserNotFound       = apperror.NotFound("User not found")
	ErrSessionInvalid     = apperror.Auth("invalid session")
)

const sessionTTL = 24 * time.Hour

type UserService struct {
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Media    MediaStore
	Redis    *redis.Client
	Cascade  *CascadeService
	Notifier *Notifier
	Logger   *logrus.Logger
}

func NewUserService(r repo.UserRepository, jwt *helpers.JWTManager, media MediaStore, rdb *redis.Client, cascade *CascadeService, notifier *Notifier, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:     r,
		JWT:      jwt,
		Media:    media,
		Redis:    rdb,
		Cascade:  cascade,
		Notifier: notifier,
		Logger:   logger,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// SessionKey is the Redis hash holding the active session of a user.
func SessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// Signup registers a user. The username is derived from the email local part.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validation.ValidEmail(email) {
		return nil, apperror.Validation("Invalid email", map[string]string{"email": "must be a valid email"})
	}
	if len(in.Password) < helpers.MinPasswordLength {
		return nil, apperror.Validation("Password must be at least 6 characters", map[string]string{"password": "must be at least 6 characters long"})
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperror.Validation("Passwords do not match", map[string]string{"confirmPassword": "must match password"})
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("Email already in use")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal("lookup email", err)
	}

	userName, err := s.availableUserName(ctx, strings.SplitN(email, "@", 2)[0])
	if err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}

	u := &entity.User{Email: email, UserName: userName, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("Email already in use")
		}
		return nil, apperror.Internal("create user", err)
	}
	s.Notifier.Welcome(ctx, u)
	return u, nil
}

func (s *UserService) availableUserName(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 0; i < 5; i++ {
		_, err := s.Repo.GetByUserName(ctx, candidate)
		if errors.Is(err, repo.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", apperror.Internal("lookup username", err)
		}
		candidate = base + "-" + uuid.NewString()[:6]
	}
	return "", apperror.Conflict("Could not derive a unique username")
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || u == nil {
		helpers.CheckPassword("", password)
		return nil, ErrInvalidCredentials
	}
	if !helpers.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.generatePair(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, apperror.Internal("generate tokens", err)
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.UserName,
			"avatar_url": u.AvatarURL,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := SessionKey(u.ID)
		if rErr := helpers.SaveHash(ctx, s.Redis, key, fields, sessionTTL); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("session save failed")
		}
	}
	return pair, nil
}

func (s *UserService) generatePair(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the session id and both tokens.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrSessionInvalid
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrSessionInvalid
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, SessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrSessionInvalid
		}
	}

	sid := uuid.NewString()
	pair, err := s.generatePair(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", apperror.Internal("generate tokens", err)
	}
	if s.Redis != nil {
		key := SessionKey(u.ID)
		if rErr := helpers.SaveHash(ctx, s.Redis, key, map[string]any{"sid": sid, "updated_at": nowRFC3339()}, sessionTTL); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("session rotate failed")
		}
	}
	return pair, u.ID, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, SessionKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if !validID(userID) {
		return nil, ErrUserNotFound
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal("load user", err)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("list users", err)
	}
	return users, nil
}

type UpdateProfileInput struct {
	Email       string
	UserName    string
	FullName    string
	Bio         string
	Gender      string
	DateOfBirth *time.Time
}

// UpdateProfile applies non-empty fields, keeping email and username unique.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" && email != u.Email {
		if !validation.ValidEmail(email) {
			return nil, apperror.Validation("Invalid email", map[string]string{"email": "must be a valid email"})
		}
		if other, err := s.Repo.GetByEmail(ctx, email); err == nil && other.ID != u.ID {
			return nil, apperror.Conflict("Email already in use")
		}
		u.Email = email
	}
	if name := strings.TrimSpace(in.UserName); name != "" && name != u.UserName {
		if other, err := s.Repo.GetByUserName(ctx, name); err == nil && other.ID != u.ID {
			return nil, apperror.Conflict("Username already taken")
		}
		u.UserName = name
	}
	if g := strings.ToLower(strings.TrimSpace(in.Gender)); g != "" {
		if !slices.Contains(entity.Genders, g) {
			return nil, apperror.Validation("Invalid gender", map[string]string{"gender": "must be one of: " + strings.Join(entity.Genders, ", ")})
		}
		u.Gender = g
	}
	if v := strings.TrimSpace(in.FullName); v != "" {
		u.FullName = v
	}
	if v := strings.TrimSpace(in.Bio); v != "" {
		u.Bio = v
	}
	if in.DateOfBirth != nil {
		u.DateOfBirth = in.DateOfBirth
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("Email or username already in use")
		}
		return nil, apperror.Internal("update user", err)
	}
	s.touchSession(ctx, u)
	return u, nil
}

// UploadAvatar stores a new avatar and deletes the previous one.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error) {
	if s.Media == nil {
		return nil, apperror.Unprocessable("Media storage is not configured")
	}
	if err := checkImage(&ImageUpload{ContentType: contentType}); err != nil {
		return nil, err
	}
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	obj, err := s.Media.Upload(ctx, "avatars/"+userID, r, filename, contentType)
	if err != nil {
		return nil, apperror.Gateway("Image upload failed", err)
	}
	previous := u.AvatarMediaID
	u.AvatarURL, u.AvatarMediaID = obj.URL, obj.ID
	if err := s.Repo.Update(ctx, u); err != nil {
		s.deleteMedia(ctx, obj.ID)
		return nil, apperror.Internal("update user", err)
	}
	s.deleteMedia(ctx, previous)
	s.touchSession(ctx, u)
	return u, nil
}

// DeleteAccount removes the user; owned posts, media, cart and wishlist go with it.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) (*entity.User, error) {
	var hook repo.UserDeleteHook
	if s.Cascade != nil {
		hook = s.Cascade.AfterUserDeleted
	}
	u, err := s.Repo.Delete(ctx, userID, hook)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if u == nil {
			return nil, apperror.Internal("delete user", err)
		}
		// the user row is gone; leftovers are logged by the cascade
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("user cascade incomplete")
		}
	}
	s.Logout(ctx, userID)
	return u, nil
}

func (s *UserService) touchSession(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	key := SessionKey(u.ID)
	err := helpers.UpdateHash(ctx, s.Redis, key, map[string]any{
		"email":      u.Email,
		"name":       u.UserName,
		"avatar_url": u.AvatarURL,
		"updated_at": nowRFC3339(),
	})
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("session update failed")
	}
}

func (s *UserService) deleteMedia(ctx context.Context, id string) {
	if id == "" || s.Media == nil {
		return
	}
	if err := s.Media.Delete(ctx, id); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("media_id", id).Warn("media delete failed")
	}
}
