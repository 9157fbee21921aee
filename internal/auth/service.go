// Package auth はメールアドレスとパスワードによる認証、アクセストークンの発行と検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

const (
	// MinPasswordLength はサインアップ時に要求するパスワードの最小文字数。
	MinPasswordLength = 6
	// maxPasswordBytes はbcryptが扱える入力の上限バイト数。
	maxPasswordBytes = 72
	// MaxEmailLength はusers.emailカラムに保存できる最大文字数。
	MaxEmailLength = 320
)

// 認証イベント名
const (
	EventSignup = "signup"
	EventLogin  = "login"
	EventLogout = "logout"
)

// MetricsRecorder は認証イベントの記録先。
type MetricsRecorder interface {
	RecordAuthEvent(event, outcome string)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   *TokenManager
	metrics  MetricsRecorder
	now      func() time.Time
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens *TokenManager,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Signup はユーザーを登録し、アクセストークンを返す。
func (s *Service) Signup(ctx context.Context, email, password string) (string, error) {
	token, err := s.signup(ctx, strings.TrimSpace(email), password)
	s.record(EventSignup, err)
	return token, err
}

func (s *Service) signup(ctx context.Context, email, password string) (string, error) {
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return "", model.NewDuplicateEmailError()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前検索と挿入の間に同じメールアドレスで登録された場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", model.NewDuplicateEmailError()
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user signed up", slog.String("user_id", user.ID))
	return s.tokens.Issue(user)
}

// Login は認証情報を照合し、アクセストークンを返す。
// メール未登録とパスワード不一致は区別せず、同一のInvalidCredentialsを返す。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	token, err := s.login(ctx, strings.TrimSpace(email), password)
	s.record(EventLogin, err)
	return token, err
}

func (s *Service) login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return "", model.NewInvalidCredentialsError()
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return s.tokens.Issue(user)
}

// Logout はログアウトを記録する。
// トークンはサーバー側で保持しないため、発行済みトークンは有効期限まで有効なままとなる。
func (s *Service) Logout(_ context.Context, principal *model.Principal) error {
	if principal == nil {
		return model.NewUnauthorizedError()
	}
	slog.Info("user logged out", slog.String("user_id", principal.UserID))
	s.record(EventLogout, nil)
	return nil
}

// VerifyToken はアクセストークンを検証し、呼び出し元のPrincipalを返す。
func (s *Service) VerifyToken(token string) (*model.Principal, error) {
	return s.tokens.Verify(token)
}

func (s *Service) record(event string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.RecordAuthEvent(event, outcome)
}

// validateCredentials はサインアップ入力を検証する。
func validateCredentials(email, password string) error {
	if email == "" {
		return model.NewInvalidInputError("email is required")
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return model.NewInvalidInputError(fmt.Sprintf("email must be at most %d characters", MaxEmailLength))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.NewInvalidInputError("email is not a valid address")
	}
	if len([]rune(password)) < MinPasswordLength {
		return model.NewInvalidInputError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return model.NewInvalidInputError(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}
