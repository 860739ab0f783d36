package profile

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"frsm-backend/middleware"
	"frsm-backend/models"
	"frsm-backend/stats"
)

var validate = validator.New()

// MaxAvatarBytes caps avatar uploads at 5 MB.
const MaxAvatarBytes = 5 << 20

// AllowedAvatarExt reports whether a filename carries an accepted image
// extension.
func AllowedAvatarExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// skillLabels are the display names for the per-skill boolean columns, in
// the order they are selected.
var skillLabels = []string{
	"Basic Firefighting",
	"First Aid / CPR",
	"Search and Rescue",
	"Driving",
	"Communication",
	"Mechanical",
	"Logistics",
}

// GetProfile returns the authenticated user's account, volunteer record, unit
// assignment, skills, and participation summary.
func GetProfile(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}

		var (
			u      models.User
			v      models.Volunteer
			volID  *int64
			skills [7]bool
		)
		err = pool.QueryRow(c.Context(), `
			SELECT us.id, us.username, us.email, us.role, us.first_name, us.middle_name,
			       us.last_name, us.contact, us.address, us.date_of_birth, us.avatar,
			       us.created_at,
			       v.id, COALESCE(v.volunteer_status, ''), v.gender, v.civil_status,
			       COALESCE(v.skills_basic_firefighting, FALSE),
			       COALESCE(v.skills_first_aid_cpr, FALSE),
			       COALESCE(v.skills_search_rescue, FALSE),
			       COALESCE(v.skills_driving, FALSE),
			       COALESCE(v.skills_communication, FALSE),
			       COALESCE(v.skills_mechanical, FALSE),
			       COALESCE(v.skills_logistics, FALSE),
			       un.unit_name, un.unit_code
			FROM users us
			LEFT JOIN volunteers v ON v.user_id = us.id AND v.status = 'approved'
			LEFT JOIN volunteer_assignments va
				ON va.volunteer_id = v.id AND va.status = 'Active'
			LEFT JOIN units un ON un.id = va.unit_id
			WHERE us.id = $1
		`, userID).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.FirstName,
			&u.MiddleName, &u.LastName, &u.Contact, &u.Address, &u.DateOfBirth,
			&u.Avatar, &u.CreatedAt,
			&volID, &v.VolunteerStatus, &v.Gender, &v.CivilStatus,
			&skills[0], &skills[1], &skills[2], &skills[3], &skills[4], &skills[5], &skills[6],
			&v.UnitName, &v.UnitCode)
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		if err != nil {
			log.Printf("profile query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load profile")
		}

		resp := fiber.Map{
			"user":      u,
			"full_name": u.FullName(),
		}
		if volID != nil {
			v.ID = *volID
			v.UserID = userID
			v.Skills = []string{}
			for i, on := range skills {
				if on {
					v.Skills = append(v.Skills, skillLabels[i])
				}
			}
			resp["volunteer"] = v

			summary, err := stats.ParticipationSummaryFor(c.Context(), pool, v.ID)
			if err != nil {
				log.Printf("participation summary failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load profile")
			}
			resp["summary"] = summary
		}
		return c.JSON(resp)
	}
}

// UploadAvatar accepts a multipart image, stores it under AVATAR_DIR with a
// random name, and records the new path on the user.
func UploadAvatar(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}

		file, err := c.FormFile("avatar")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "An avatar file is required")
		}
		if !AllowedAvatarExt(file.Filename) {
			return fiber.NewError(fiber.StatusBadRequest, "Avatar must be a jpg, jpeg, png, or gif image")
		}
		if file.Size > MaxAvatarBytes {
			return fiber.NewError(fiber.StatusBadRequest, "Avatar must be 5MB or smaller")
		}

		dir := os.Getenv("AVATAR_DIR")
		if dir == "" {
			dir = "./uploads/avatars"
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("avatar dir create failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to save avatar")
		}

		name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
		dest := filepath.Join(dir, name)
		if err := c.SaveFile(file, dest); err != nil {
			log.Printf("avatar save failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to save avatar")
		}

		avatarURL := "/uploads/avatars/" + name
		if _, err := pool.Exec(c.Context(), `
			UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1
		`, userID, avatarURL); err != nil {
			log.Printf("avatar update failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to save avatar")
		}
		return c.JSON(fiber.Map{"success": true, "avatar_url": avatarURL})
	}
}

// ChangePassword verifies the current password and stores a bcrypt hash of
// the new one.
func ChangePassword(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}

		var req models.ChangePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest,
				"New password must be at least 8 characters and match the confirmation")
		}

		var hash string
		err = pool.QueryRow(c.Context(), `
			SELECT password_hash FROM users WHERE id = $1
		`, userID).Scan(&hash)
		if err != nil {
			log.Printf("password lookup failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to change password")
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.CurrentPassword)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Current password is incorrect")
		}

		newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("password hash failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to change password")
		}
		if _, err := pool.Exec(c.Context(), `
			UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
		`, userID, string(newHash)); err != nil {
			log.Printf("password update failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to change password")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Password changed"})
	}
}

// UpdatePersonalInfo updates the user's contact number and address.
func UpdatePersonalInfo(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}

		var req models.UpdatePersonalInfoRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		req.Contact = strings.TrimSpace(req.Contact)
		req.Address = strings.TrimSpace(req.Address)

		if _, err := pool.Exec(c.Context(), `
			UPDATE users SET contact = $2, address = $3, updated_at = NOW() WHERE id = $1
		`, userID, req.Contact, req.Address); err != nil {
			log.Printf("personal info update failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to update personal info")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Personal info updated"})
	}
}
