// Package auth registers users with bcrypt hashed passwords and issues HS256 signed bearer tokens.
package auth

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/sqlite"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.NewSentinel("invalid username or password")
	ErrUsernameTaken      = errors.NewSentinel("username taken")
	ErrInvalidInput       = errors.NewSentinel("invalid input")
	ErrInvalidToken       = errors.NewSentinel("invalid token")
)

const (
	minUsername = 3
	maxUsername = 64
	minPassword = 8
	// bcrypt ignores bytes past 72.
	maxPassword = 72
)

// Session is returned after a successful register or login.
type Session struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Claims are the verified contents of a token.
type Claims struct {
	UserID   string
	Username string
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Service struct {
	db     *sqlite.Database
	logger *slog.Logger
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

type Option func(*Service)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *sqlite.Database, logger *slog.Logger, secret []byte, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		db:     db,
		logger: logger,
		secret: secret,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validate(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsername || n > maxUsername {
		return "", errors.Wrap(ErrInvalidInput, "username must be between 3 and 64 characters")
	}
	if n := len(password); n < minPassword || n > maxPassword {
		return "", errors.Wrap(ErrInvalidInput, "password must be between 8 and 72 bytes")
	}
	return username, nil
}

// Register creates the user and returns a session for it.
func (s *Service) Register(ctx context.Context, username, password string) (Session, error) {
	username, err := validate(username, password)
	if err != nil {
		return Session{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Session{}, errors.Wrap(err, "hash password")
	}
	userID := uuid.NewString()
	_, err = s.db.ReadWrite.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)`, userID, username, string(hash))
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return Session{}, errors.Wrap(ErrUsernameTaken, "register", slog.String("username", username))
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "insert user")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user registered", slog.String("user_id", userID))
	return s.session(userID, username)
}

// Login checks the password and returns a new session. Unknown users and wrong passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	var userID, storedName, hash string
	err := s.db.ReadOnly.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`, strings.TrimSpace(username)).
		Scan(&userID, &storedName, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "query user")
	}
	if err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(userID, storedName)
}

func (s *Service) session(userID, username string) (Session, error) {
	token, err := s.IssueToken(userID, username)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, UserID: userID, Username: username}, nil
}

// IssueToken signs a token for the user that expires after the configured TTL.
func (s *Service) IssueToken(userID, username string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify parses and validates a token.
func (s *Service) Verify(token string) (Claims, error) {
	var c tokenClaims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: c.Subject, Username: c.Username}, nil
}

// Exists reports whether the user is still registered.
func (s *Service) Exists(ctx context.Context, userID string) (bool, error) {
	var n int
	if err := s.db.ReadOnly.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, userID).Scan(&n); err != nil {
		return false, errors.Wrap(err, "count users")
	}
	return n > 0, nil
}
