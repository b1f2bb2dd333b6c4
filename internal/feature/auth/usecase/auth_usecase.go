package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mock_trader/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	// dummyHash はユーザーが存在しない場合にもbcrypt比較を行うためのハッシュです。
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。一意制約違反の場合は ErrUserAlreadyExists を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail / FindByUsername は該当ユーザーがいない場合 ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
type JWTGenerator interface {
	GenerateToken(userID uint, username, firstName, lastName string) (string, error)
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users        UserRepository
	sessions     SessionRepository
	jwtGenerator JWTGenerator
	now          func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, jwtGenerator JWTGenerator) *authUsecase {
	return &authUsecase{
		users:        users,
		sessions:     sessions,
		jwtGenerator: jwtGenerator,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, minPasswordLength)
	}
	return nil
}

// Register はメールアドレスとユーザー名が未使用であることを確認し、ハッシュ化したパスワードで新規ユーザーを登録します。
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if err := u.ensureUnused(ctx, email, u.users.FindByEmail, ErrEmailAlreadyExists); err != nil {
		return nil, err
	}
	if err := u.ensureUnused(ctx, username, u.users.FindByUsername, ErrUsernameAlreadyExists); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Username:  username,
		Password:  string(hashed),
		IsActive:  true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) ensureUnused(ctx context.Context, value string, find func(context.Context, string) (*entity.User, error), taken error) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, ErrUserNotFound):
		return nil
	default:
		return err
	}
}

// Login はメールアドレスまたはユーザー名でユーザーを認証し、アクセストークンを返します。
// 成功時は既存セッションをすべて無効化し、新しいセッションを記録します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, identifier, password, ipAddress string) (string, error) {
	user, err := u.findByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", err
	}

	passwordHash := dummyHash
	if user != nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if user == nil || compareErr != nil || !user.IsActive {
		return "", ErrInvalidCredentials
	}

	if err := u.sessions.DeactivateAllByUserID(ctx, user.ID); err != nil {
		return "", fmt.Errorf("failed to deactivate sessions: %w", err)
	}

	token, err := u.jwtGenerator.GenerateToken(user.ID, user.Username, user.FirstName, user.LastName)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	session := &entity.Session{
		UserID:    user.ID,
		Token:     token,
		IPAddress: ipAddress,
		IsActive:  true,
		CreatedAt: u.now(),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	slog.Debug("session created", "user_id", user.ID, "ip_address", ipAddress)
	return token, nil
}

// findByIdentifier はメールアドレス、次にユーザー名の順で検索します。
func (u *authUsecase) findByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	if identifier == "" {
		return nil, ErrUserNotFound
	}
	user, err := u.users.FindByEmail(ctx, strings.ToLower(identifier))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	return u.users.FindByUsername(ctx, identifier)
}

// Logout はユーザーのすべてのセッションを無効化します。
func (u *authUsecase) Logout(ctx context.Context, userID uint) error {
	return u.sessions.DeactivateAllByUserID(ctx, userID)
}

// HasActiveSession は認証ミドルウェアから呼ばれ、アクティブなセッションの有無を返します。
func (u *authUsecase) HasActiveSession(ctx context.Context, userID uint) (bool, error) {
	return u.sessions.HasActive(ctx, userID)
}
