package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type ownerIDKey struct{}

type authService struct {
	db     *sql.DB
	secret []byte
}

func newAuthService(db *sql.DB, secret string) *authService {
	return &authService{db: db, secret: []byte(secret)}
}

type authClaims struct {
	OwnerID int64 `json:"owner_id"`
	jwt.RegisteredClaims
}

func (a *authService) issueToken(ownerID int64) (string, error) {
	now := time.Now()
	claims := &authClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "costmanager",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (a *authService) verifyToken(raw string) (int64, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.OwnerID == 0 {
		return 0, fmt.Errorf("invalid token claims")
	}
	return claims.OwnerID, nil
}

// register creates a user and returns its id. A duplicate email fails.
func (a *authService) register(ctx context.Context, email, password string) (int64, error) {
	var exists bool
	if err := a.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return 0, errUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	res, err := a.db.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash))
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}
	return id, nil
}

var (
	errUserExists         = errors.New("user already exists")
	errInvalidCredentials = errors.New("invalid credentials")
)

// login validates credentials and returns the user id.
func (a *authService) login(ctx context.Context, email, password string) (int64, error) {
	var id int64
	var hash string
	err := a.db.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("query user credentials: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return 0, errInvalidCredentials
	}
	return id, nil
}

// middleware authenticates the bearer token and stows the owner id in the
// request context. Every read and write downstream is scoped by that id.
func (a *authService) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		ownerID, err := a.verifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey{}, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerIDFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(ownerIDKey{}).(int64)
	return id
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	id, err := s.auth.register(r.Context(), req.Email, req.Password)
	if errors.Is(err, errUserExists) {
		writeError(w, http.StatusBadRequest, "user already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	token, err := s.auth.issueToken(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  map[string]any{"id": id, "email": req.Email},
		"token": token,
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	id, err := s.auth.login(r.Context(), req.Email, req.Password)
	if errors.Is(err, errInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := s.auth.issueToken(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  map[string]any{"id": id, "email": req.Email},
		"token": token,
	})
}
