package auth

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	autherrors "github.com/SebastienDelgado/detachements-backend/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 12 * time.Hour

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken string, resp AuthResponse, err error)

	GetMe(ctx context.Context, adminID string) (*AuthResponse, error)

	// EnsureSeedAdmin creates the bootstrap account from ADMIN_EMAIL,
	// ADMIN_NAME and ADMIN_PASSWORD when no account exists yet.
	EnsureSeedAdmin(ctx context.Context) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (string, AuthResponse, error) {
	admin, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if !admin.IsActive {
		return "", AuthResponse{}, autherrors.ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	token, err := s.generateToken(admin)
	if err != nil {
		return "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("admin logged in", zap.String("admin_id", admin.ID.String()))

	return token, AuthResponse{
		ID:    admin.ID.String(),
		Email: admin.Email,
		Name:  admin.Name,
		Role:  admin.Role,
	}, nil
}

func (s *service) GetMe(ctx context.Context, adminID string) (*AuthResponse, error) {
	id, err := uuid.Parse(adminID)
	if err != nil {
		return nil, autherrors.ErrInvalidAdminID
	}

	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrAdminNotFound
	}

	if !admin.IsActive {
		return nil, autherrors.ErrAccountDisabled
	}

	return &AuthResponse{
		ID:    admin.ID.String(),
		Email: admin.Email,
		Name:  admin.Name,
		Role:  admin.Role,
	}, nil
}

func (s *service) EnsureSeedAdmin(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		s.logger.Warn("admin seed skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	name := strings.TrimSpace(os.Getenv("ADMIN_NAME"))
	if name == "" {
		name = "Administrateur"
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &AdminUser{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         "admin",
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		// Another instance may have seeded first.
		if isDuplicateEmail(err) {
			return nil
		}
		return err
	}

	s.logger.Info("seed admin created", zap.String("email", email))
	return nil
}

func isDuplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key value")
}

// reusable token generator
func (s *service) generateToken(admin *AdminUser) (string, error) {
	claims := jwt.MapClaims{
		"admin_id": admin.ID.String(),
		"name":     admin.Name,
		"email":    admin.Email,
		"role":     admin.Role,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
