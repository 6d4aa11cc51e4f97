package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"webstore/entity"
	"webstore/internal/lib/sl"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

type Repository interface {
	CreateUser(ctx context.Context, user *entity.User) error
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) error
}

// Service issues and validates bearer tokens and manages user credentials.
type Service struct {
	repository Repository
	jwtSecret  []byte
	tokenTTL   time.Duration
	validate   *validator.Validate
	log        *slog.Logger
}

type claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

func NewAuthService(jwtSecret string, tokenTTLHours int, logger *slog.Logger) *Service {
	if tokenTTLHours <= 0 {
		tokenTTLHours = 72
	}
	return &Service{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  time.Duration(tokenTTLHours) * time.Hour,
		validate:  validator.New(),
		log:       logger.With(sl.Module("auth-service")),
	}
}

func (s *Service) SetRepository(repository Repository) {
	s.repository = repository
}

// Register creates a user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	if s.repository == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	existing, err := s.repository.GetUserByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := entity.NewUser(name, email, string(hash))
	if err := s.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.With(slog.String("email", email)).Info("user registered")
	return user, nil
}

// Login checks credentials and returns the user with a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	if s.repository == nil {
		return nil, "", fmt.Errorf("repository not initialized")
	}

	user, err := s.repository.GetUserByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// UpdatePassword re-hashes and stores a new password for the user.
func (s *Service) UpdatePassword(ctx context.Context, user *entity.User, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.Password = string(hash)
	return s.repository.UpdateUser(ctx, user)
}

func (s *Service) issueToken(user *entity.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// AuthenticateByToken validates a bearer token and loads its user.
func (s *Service) AuthenticateByToken(token string) (*entity.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	tokenClaims, ok := parsed.Claims.(*claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(tokenClaims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository not initialized")
	}

	user, err := s.repository.GetUserByID(context.Background(), userID)
	if err != nil || user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
