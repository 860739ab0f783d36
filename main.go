package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"frsm-backend/db"
	hAttendance "frsm-backend/handlers/attendance"
	hAuth "frsm-backend/handlers/auth"
	hDuties "frsm-backend/handlers/duties"
	hFeedback "frsm-backend/handlers/feedback"
	"frsm-backend/handlers/health"
	hNotifications "frsm-backend/handlers/notifications"
	hProfile "frsm-backend/handlers/profile"
	hShifts "frsm-backend/handlers/shifts"
	hUnits "frsm-backend/handlers/units"
	hVolunteers "frsm-backend/handlers/volunteers"
	mw "frsm-backend/middleware"
	"frsm-backend/models"
)

func main() {
	_ = godotenv.Load()

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8000"
	}

	pool := db.MustPool()
	defer pool.Close()

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Get("/healthz", health.Check(pool))
	app.Static("/uploads", "./uploads")

	jwtGuard := mw.JwtGuard()
	requireAdmin := mw.RequireRole(string(models.UserRoleAdmin))
	requireStaff := mw.RequireRole(string(models.UserRoleEmployee), string(models.UserRoleAdmin))
	requireVolunteer := mw.RequireRole(string(models.UserRoleVolunteer), string(models.UserRoleAdmin))

	// --- Auth ---
	auth := app.Group("/auth")
	auth.Post("/login", hAuth.Login(pool))
	auth.Post("/refresh", hAuth.Refresh(pool))
	auth.Post("/logout", hAuth.Logout(pool))
	auth.Get("/me", jwtGuard, hAuth.Me(pool))

	// --- Shifts (volunteer self-service) ---
	shifts := app.Group("/shifts", jwtGuard, requireVolunteer)
	// Static paths before the /:id parameter routes.
	shifts.Get("/pending", hShifts.ListPending(pool))
	shifts.Get("/confirmed", hShifts.ListConfirmed(pool))
	shifts.Get("/calendar", hShifts.CalendarMonth(pool))
	shifts.Get("/swap-candidates", hShifts.SwapCandidates(pool))
	shifts.Get("/summary", hShifts.Summary(pool))
	shifts.Post("/:id/confirm", hShifts.Confirm(pool))
	shifts.Post("/:id/decline", hShifts.Decline(pool))
	shifts.Post("/:id/request-change", hShifts.RequestChange(pool))

	// --- Attendance ---
	att := app.Group("/attendance", jwtGuard, requireVolunteer)
	att.Get("/logs", hAttendance.Logs(pool))
	att.Get("/summary", hAttendance.Summary(pool))
	att.Get("/calendar", hAttendance.Calendar(pool))
	att.Get("/upcoming", hAttendance.Upcoming(pool))
	att.Get("/years", hAttendance.Years(pool))
	att.Get("/export_csv", hAttendance.ExportCSV(pool))

	// --- Duty assignments ---
	duties := app.Group("/duties", jwtGuard, requireVolunteer)
	duties.Get("/", hDuties.List(pool))
	duties.Get("/summary", hDuties.Summary(pool))
	duties.Get("/units", hDuties.Units(pool))
	duties.Get("/shift/:id", hDuties.GetShiftDuty(pool))

	// --- Profile ---
	prof := app.Group("/profile", jwtGuard)
	prof.Get("/me", hProfile.GetProfile(pool))
	prof.Post("/avatar", hProfile.UploadAvatar(pool))
	prof.Post("/password", hProfile.ChangePassword(pool))
	prof.Put("/personal-info", hProfile.UpdatePersonalInfo(pool))

	// --- Notifications ---
	notif := app.Group("/notifications", jwtGuard)
	notif.Get("/me", hNotifications.ListMine(pool))
	notif.Post("/read-all", hNotifications.ReadAll(pool))
	notif.Post("/:id/read", hNotifications.MarkRead(pool))

	// --- Volunteer roster (staff) ---
	vol := app.Group("/volunteers", jwtGuard, requireStaff)
	vol.Get("/", hVolunteers.List(pool))
	vol.Get("/:id", hVolunteers.Get(pool))

	// --- Units ---
	units := app.Group("/units")
	units.Get("/", jwtGuard, hUnits.List(pool))
	units.Post("/", jwtGuard, requireAdmin, hUnits.Create(pool))
	units.Put("/:id", jwtGuard, requireAdmin, hUnits.Update(pool))
	units.Delete("/:id", jwtGuard, requireAdmin, hUnits.Delete(pool))

	// --- Feedback ---
	fb := app.Group("/feedback", jwtGuard)
	fb.Post("/", hFeedback.Submit(pool))
	fb.Get("/", requireStaff, hFeedback.List(pool))
	fb.Post("/:id/review", requireStaff, hFeedback.MarkReviewed(pool))

	log.Printf("listening on %s", addr)
	log.Fatal(app.Listen(addr))
}
