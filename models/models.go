package models

import "time"

// ErrorResponse represents a generic error structure for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Enums

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleEmployee  UserRole = "employee"
	UserRoleVolunteer UserRole = "volunteer"
)

type ShiftType string

const (
	ShiftMorning   ShiftType = "morning"
	ShiftAfternoon ShiftType = "afternoon"
	ShiftEvening   ShiftType = "evening"
	ShiftNight     ShiftType = "night"
	ShiftFullDay   ShiftType = "full_day"
	ShiftCustom    ShiftType = "custom"
)

type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "scheduled"
	ShiftConfirmed ShiftStatus = "confirmed"
	ShiftCancelled ShiftStatus = "cancelled"
	ShiftCompleted ShiftStatus = "completed"
	ShiftAbsent    ShiftStatus = "absent"
)

// ConfirmationStatus is the volunteer's acknowledgment state for a shift.
// The zero value means the volunteer has not responded yet (NULL in the DB).
type ConfirmationStatus string

const (
	ConfirmationUnset           ConfirmationStatus = ""
	ConfirmationPending         ConfirmationStatus = "pending"
	ConfirmationConfirmed       ConfirmationStatus = "confirmed"
	ConfirmationDeclined        ConfirmationStatus = "declined"
	ConfirmationChangeRequested ConfirmationStatus = "change_requested"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
	AttendanceOnLeave AttendanceStatus = "on_leave"
)

type DutyPriority string

const (
	PriorityPrimary   DutyPriority = "primary"
	PrioritySecondary DutyPriority = "secondary"
	PrioritySupport   DutyPriority = "support"
)

type ChangeRequestType string

const (
	RequestTimeChange ChangeRequestType = "time_change"
	RequestSwap       ChangeRequestType = "swap"
	RequestOther      ChangeRequestType = "other"
)

// VolunteerStanding mirrors the volunteer_status column written by the admin
// tooling (stored with the original casing).
type VolunteerStanding string

const (
	StandingActive   VolunteerStanding = "Active"
	StandingInactive VolunteerStanding = "Inactive"
	StandingNew      VolunteerStanding = "New Volunteer"
)

// Main models

type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        UserRole   `json:"role"`
	FirstName   string     `json:"first_name"`
	MiddleName  *string    `json:"middle_name"`
	LastName    string     `json:"last_name"`
	Contact     *string    `json:"contact"`
	Address     *string    `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Avatar      *string    `json:"avatar"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FullName joins first, optional middle, and last name.
func (u User) FullName() string {
	name := u.FirstName
	if u.MiddleName != nil && *u.MiddleName != "" {
		name += " " + *u.MiddleName
	}
	return name + " " + u.LastName
}

type Unit struct {
	ID       int64   `json:"id"`
	UnitName string  `json:"unit_name"`
	UnitCode string  `json:"unit_code"`
	UnitType *string `json:"unit_type"`
	Location *string `json:"location"`
}

type Volunteer struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	ContactNumber   *string           `json:"contact_number"`
	Email           *string           `json:"email"`
	Status          string            `json:"status"`
	VolunteerStatus VolunteerStanding `json:"volunteer_status"`
	Gender          *string           `json:"gender"`
	CivilStatus     *string           `json:"civil_status"`
	Skills          []string          `json:"skills"`
	CreatedAt       time.Time         `json:"created_at"`

	// Enriched fields for responses
	UnitName *string `json:"unit_name,omitempty"`
	UnitCode *string `json:"unit_code,omitempty"`
}

type DutyAssignment struct {
	ID                int64        `json:"id"`
	DutyType          string       `json:"duty_type"`
	DutyDescription   *string      `json:"duty_description"`
	Priority          DutyPriority `json:"priority"`
	RequiredEquipment []string     `json:"required_equipment"`
	RequiredTraining  []string     `json:"required_training"`
	Notes             *string      `json:"notes"`
}

type Shift struct {
	ID                 int64              `json:"id"`
	VolunteerID        int64              `json:"volunteer_id"`
	UnitID             *int64             `json:"unit_id"`
	ShiftDate          time.Time          `json:"shift_date"`
	ShiftType          ShiftType          `json:"shift_type"`
	StartTime          string             `json:"start_time"`
	EndTime            string             `json:"end_time"`
	Location           *string            `json:"location"`
	Status             ShiftStatus        `json:"status"`
	ConfirmationStatus ConfirmationStatus `json:"confirmation_status"`
	DeclinedReason     *string            `json:"declined_reason,omitempty"`
	ChangeRequestNotes *string            `json:"change_request_notes,omitempty"`
	ConfirmedAt        *time.Time         `json:"confirmed_at,omitempty"`
	Notes              *string            `json:"notes,omitempty"`

	// Enriched fields for responses
	UnitName     *string         `json:"unit_name,omitempty"`
	UnitCode     *string         `json:"unit_code,omitempty"`
	UnitType     *string         `json:"unit_type,omitempty"`
	UnitLocation *string         `json:"unit_location,omitempty"`
	Duty         *DutyAssignment `json:"duty,omitempty"`
}

type ShiftConfirmation struct {
	ID            int64     `json:"id"`
	ShiftID       int64     `json:"shift_id"`
	VolunteerID   int64     `json:"volunteer_id"`
	Status        string    `json:"status"`
	ResponseNotes *string   `json:"response_notes"`
	RespondedAt   time.Time `json:"responded_at"`
}

type ShiftChangeRequest struct {
	ID                  int64             `json:"id"`
	ShiftID             int64             `json:"shift_id"`
	VolunteerID         int64             `json:"volunteer_id"`
	RequestType         ChangeRequestType `json:"request_type"`
	RequestDetails      string            `json:"request_details"`
	ProposedDate        *time.Time        `json:"proposed_date"`
	ProposedStartTime   *string           `json:"proposed_start_time"`
	ProposedEndTime     *string           `json:"proposed_end_time"`
	SwapWithVolunteerID *int64            `json:"swap_with_volunteer_id"`
	Status              string            `json:"status"`
	RequestedAt         time.Time         `json:"requested_at"`
}

type AttendanceLog struct {
	ID               int64            `json:"id"`
	ShiftID          *int64           `json:"shift_id"`
	VolunteerID      int64            `json:"volunteer_id"`
	ShiftDate        time.Time        `json:"shift_date"`
	CheckIn          *time.Time       `json:"check_in"`
	CheckOut         *time.Time       `json:"check_out"`
	AttendanceStatus AttendanceStatus `json:"attendance_status"`
	TotalHours       float64          `json:"total_hours"`
	OvertimeHours    float64          `json:"overtime_hours"`
	Notes            *string          `json:"notes"`
	VerifiedAt       *time.Time       `json:"verified_at,omitempty"`

	// Enriched fields for responses
	ShiftType      *ShiftType `json:"shift_type,omitempty"`
	ShiftStartTime *string    `json:"shift_start_time,omitempty"`
	ShiftEndTime   *string    `json:"shift_end_time,omitempty"`
	ShiftLocation  *string    `json:"shift_location,omitempty"`
	UnitName       *string    `json:"unit_name,omitempty"`
	UnitCode       *string    `json:"unit_code,omitempty"`
	VerifiedByName *string    `json:"verified_by_name,omitempty"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Feedback struct {
	ID          int64      `json:"id"`
	UserID      *int64     `json:"user_id"`
	Subject     string     `json:"subject"`
	Message     string     `json:"message"`
	Rating      *int       `json:"rating"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`

	// Enriched fields for responses
	SubmittedByName *string `json:"submitted_by_name,omitempty"`
}

// SwapCandidate is a volunteer another volunteer may request to swap a shift with.
type SwapCandidate struct {
	ID            int64   `json:"id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Email         *string `json:"email"`
	ContactNumber *string `json:"contact_number"`
	UnitName      *string `json:"unit_name"`
}

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	ExpiresIn    int      `json:"expires_in"`
	RefreshToken *string  `json:"refresh_token,omitempty"`
	Role         UserRole `json:"role"`
	UserID       int64    `json:"user_id"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type DeclineShiftRequest struct {
	Reason string `json:"decline_reason" validate:"required,min=1"`
}

type ChangeRequestRequest struct {
	RequestType       ChangeRequestType `json:"request_type" validate:"required,oneof=time_change swap other"`
	RequestDetails    string            `json:"request_details" validate:"required,min=1"`
	ProposedDate      *string           `json:"proposed_date,omitempty"`
	ProposedStartTime *string           `json:"proposed_start_time,omitempty"`
	ProposedEndTime   *string           `json:"proposed_end_time,omitempty"`
	SwapWithVolunteer *int64            `json:"swap_with_volunteer_id,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type UpdatePersonalInfoRequest struct {
	Contact string `json:"contact"`
	Address string `json:"address"`
}

type CreateUnitRequest struct {
	UnitName string  `json:"unit_name" validate:"required"`
	UnitCode string  `json:"unit_code" validate:"required"`
	UnitType *string `json:"unit_type"`
	Location *string `json:"location"`
}

type UpdateUnitRequest struct {
	UnitName *string `json:"unit_name"`
	UnitCode *string `json:"unit_code"`
	UnitType *string `json:"unit_type"`
	Location *string `json:"location"`
}

type SubmitFeedbackRequest struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
	Rating  *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}
