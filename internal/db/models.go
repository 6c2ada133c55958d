// internal/db/models.go
package db

import (
	"database/sql"
	"time"
)

type Owner struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	ClubOwnerID  sql.NullInt64
	CreatedAt    time.Time
}

// EffectiveOwnerID resolves the tenant-scoping key: staff act under their
// club owner's id rather than their own.
func (o Owner) EffectiveOwnerID() int64 {
	if o.Role == "staff" && o.ClubOwnerID.Valid {
		return o.ClubOwnerID.Int64
	}
	return o.ID
}

type Court struct {
	ID         int64
	OwnerID    int64
	Name       string
	CourtType  string
	HourlyRate float64
	PeakRate   float64
	SortOrder  int64
	IsActive   bool
	CreatedAt  time.Time
}

type OperatingHour struct {
	OwnerID   int64
	DayOfWeek int64
	OpensAt   string
	ClosesAt  string
}

type Plan struct {
	ID              int64
	OwnerID         int64
	Name            string
	DiscountPercent float64
	MonthlyFee      float64
	CreatedAt       time.Time
}

type Member struct {
	ID        int64
	OwnerID   int64
	Name      string
	Phone     sql.NullString
	Email     sql.NullString
	PlanID    sql.NullInt64
	CreatedAt time.Time
}

// MemberWithPlan joins the subscription plan carrying the discount.
type MemberWithPlan struct {
	Member
	PlanName     sql.NullString
	PlanDiscount sql.NullFloat64
}

// PlayerSlot is one of the four embedded player slots of a booking.
type PlayerSlot struct {
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	IsMember        bool    `json:"is_member"`
	DiscountPercent float64 `json:"discount_percent"`
}

type Booking struct {
	ID            int64
	OwnerID       int64
	CourtID       int64
	StartTime     time.Time
	EndTime       time.Time
	Price         float64
	PaymentStatus string
	Status        string
	EventType     string
	Notes         string
	Players       [4]PlayerSlot
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookingWithCourt carries the joined court columns the calendar needs.
type BookingWithCourt struct {
	Booking
	CourtName      string
	CourtType      string
	CourtRate      float64
	CourtPeakRate  float64
	CourtSortOrder int64
}

type Class struct {
	ID              int64
	OwnerID         int64
	Name            string
	Coach           string
	CourtID         int64
	DayOfWeek       int64
	StartsAt        string
	DurationMinutes int64
	Price           float64
	CreatedAt       time.Time
}
