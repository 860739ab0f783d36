package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"frsm-backend/middleware"
	"frsm-backend/models"
)

// execer lets issueTokens write the session row through the pool or through
// an open transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Login handles email/password authentication and issues tokens.
func Login(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email and password are required")
		}

		var (
			userID int64
			hash   string
			role   models.UserRole
		)
		err := pool.QueryRow(c.Context(), `
			SELECT id, password_hash, role FROM users WHERE lower(email) = $1
		`, req.Email).Scan(&userID, &hash, &role)
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}
		if err != nil {
			log.Printf("login lookup failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to log in")
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		resp, err := issueTokens(c, pool, userID, role)
		if err != nil {
			log.Printf("issue tokens failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to log in")
		}
		return c.JSON(resp)
	}
}

// Refresh rotates a refresh token and returns a fresh token pair.
func Refresh(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh_token is required")
		}

		tokenHash := sha256b64(req.RefreshToken)
		var (
			sessionID int64
			userID    int64
			role      models.UserRole
		)
		err := pool.QueryRow(c.Context(), `
			SELECT s.id, s.user_id, u.role
			FROM auth_sessions s
			JOIN users u ON u.id = s.user_id
			WHERE s.refresh_token_hash = $1
			  AND s.revoked_at IS NULL
			  AND s.expires_at > NOW()
		`, tokenHash).Scan(&sessionID, &userID, &role)
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired refresh token")
		}
		if err != nil {
			log.Printf("refresh lookup failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to refresh session")
		}

		// Rotation is atomic: the old session is revoked and the new one
		// inserted in the same transaction, so a failure partway leaves the
		// presented token usable.
		tx, err := pool.Begin(c.Context())
		if err != nil {
			log.Printf("begin tx failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to refresh session")
		}
		defer tx.Rollback(c.Context())

		if _, err := tx.Exec(c.Context(), `
			UPDATE auth_sessions SET revoked_at = NOW() WHERE id = $1
		`, sessionID); err != nil {
			log.Printf("refresh revoke failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to refresh session")
		}

		resp, err := issueTokens(c, tx, userID, role)
		if err != nil {
			log.Printf("issue tokens failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to refresh session")
		}
		if err := tx.Commit(c.Context()); err != nil {
			log.Printf("refresh commit failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to refresh session")
		}
		return c.JSON(resp)
	}
}

// Logout revokes the presented refresh token's session. The access token is
// short-lived and simply expires.
func Logout(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh_token is required")
		}
		if _, err := pool.Exec(c.Context(), `
			UPDATE auth_sessions SET revoked_at = NOW()
			WHERE refresh_token_hash = $1 AND revoked_at IS NULL
		`, sha256b64(req.RefreshToken)); err != nil {
			log.Printf("logout failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to log out")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// Me returns the authenticated user's account record.
func Me(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}

		var u models.User
		err = pool.QueryRow(c.Context(), `
			SELECT id, username, email, role, first_name, middle_name, last_name,
			       contact, address, date_of_birth, avatar, created_at
			FROM users WHERE id = $1
		`, userID).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.FirstName,
			&u.MiddleName, &u.LastName, &u.Contact, &u.Address, &u.DateOfBirth,
			&u.Avatar, &u.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		if err != nil {
			log.Printf("me lookup failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load user")
		}
		return c.JSON(u)
	}
}

// issueTokens builds an access token and, for admins and employees, a
// server-tracked refresh token. Volunteer sessions are access-token only.
func issueTokens(c *fiber.Ctx, db execer, userID int64, role models.UserRole) (models.LoginResponse, error) {
	accessTTL := time.Duration(ttlFromEnv("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute
	access, err := middleware.BuildAccessToken(userID, role, accessTTL)
	if err != nil {
		return models.LoginResponse{}, err
	}

	resp := models.LoginResponse{
		AccessToken: access,
		ExpiresIn:   int(accessTTL.Seconds()),
		Role:        role,
		UserID:      userID,
	}

	if role == models.UserRoleAdmin || role == models.UserRoleEmployee {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return models.LoginResponse{}, err
		}
		refresh := base64.RawURLEncoding.EncodeToString(raw)
		refreshTTL := time.Duration(ttlFromEnv("REFRESH_TOKEN_TTL_HOURS", 24*7)) * time.Hour

		if _, err := db.Exec(c.Context(), `
			INSERT INTO auth_sessions (user_id, refresh_token_hash, user_agent, ip, expires_at)
			VALUES ($1, $2, $3, $4, $5)
		`, userID, sha256b64(refresh), c.Get("User-Agent"), c.IP(), time.Now().Add(refreshTTL)); err != nil {
			return models.LoginResponse{}, err
		}
		resp.RefreshToken = &refresh
	}
	return resp, nil
}

// sha256b64 hashes a token for at-rest storage so a leaked sessions table
// cannot be replayed.
func sha256b64(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ttlFromEnv reads a positive integer from the environment; the caller
// applies the unit.
func ttlFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// HashPassword wraps bcrypt with the default cost for account tooling.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}
