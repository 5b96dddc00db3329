package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User roles
const (
	RoleAdmin    = "ADMIN"
	RoleGuard    = "GUARD"
	RoleResident = "RESIDENT"
)

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	FullName  string         `gorm:"size:120" json:"full_name"`
	Phone     string         `gorm:"size:20" json:"phone"`
	Role      string         `gorm:"size:20;default:'RESIDENT'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Registry Tables: Property / Resident / Visitor / Vehicle / Visit
// ============================================================

// Resident roles
const (
	ResidentRoleOwner  = "OWNER"
	ResidentRoleTenant = "TENANT"
	ResidentRoleOther  = "OTHER"
)

// Property represents a condominium unit
type Property struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UnitCode  string         `gorm:"uniqueIndex;size:20;not null" json:"unit_code"`
	OwnerID   *uint          `gorm:"index" json:"owner_id"`
	Area      float64        `gorm:"type:decimal(10,2)" json:"area"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner     *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Residents []Resident `gorm:"foreignKey:PropertyID" json:"residents,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}

// Resident binds one user to one property with a role.
// The binding is one-to-one on the user side: a user has at most one
// resident profile.
type Resident struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	PropertyID uint           `gorm:"index;not null" json:"property_id"`
	Role       string         `gorm:"size:20;not null;default:'TENANT'" json:"role"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

func (Resident) TableName() string {
	return "residents"
}

// Visitor represents an external person identified by document number
type Visitor struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FullName   string         `gorm:"size:120;not null" json:"full_name"`
	DocumentNo string         `gorm:"uniqueIndex;size:30;not null" json:"document_no"`
	Phone      string         `gorm:"size:20" json:"phone"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Visitor) TableName() string {
	return "visitors"
}

// Vehicle kinds, derived from which owner reference is set
const (
	VehicleKindResident     = "RESIDENT"
	VehicleKindVisitor      = "VISITOR"
	VehicleKindUnregistered = "UNREGISTERED"
)

// ErrVehicleOwnership is raised by the BeforeSave hook when both owner
// references are set at once.
var ErrVehicleOwnership = errors.New("vehicle cannot belong to a property and a visitor at the same time")

// Vehicle represents a registered vehicle. At most one of PropertyID /
// VisitorID is set; neither set means the plate is registered but unbound.
type Vehicle struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Plate      string         `gorm:"uniqueIndex;size:15;not null" json:"plate"`
	PropertyID *uint          `gorm:"index" json:"property_id"`
	VisitorID  *uint          `gorm:"index" json:"visitor_id"`
	Brand      string         `gorm:"size:50" json:"brand"`
	Color      string         `gorm:"size:30" json:"color"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Visitor  *Visitor  `gorm:"foreignKey:VisitorID" json:"visitor,omitempty"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// BeforeSave normalizes the plate and enforces the one-owner invariant.
func (v *Vehicle) BeforeSave(tx *gorm.DB) error {
	v.Plate = NormalizePlate(v.Plate)
	if v.PropertyID != nil && v.VisitorID != nil {
		return ErrVehicleOwnership
	}
	return nil
}

// Kind reports whether the plate is resident, visitor or unregistered traffic.
func (v *Vehicle) Kind() string {
	switch {
	case v.PropertyID != nil:
		return VehicleKindResident
	case v.VisitorID != nil:
		return VehicleKindVisitor
	default:
		return VehicleKindUnregistered
	}
}

// NormalizePlate uppercases and strips spaces so plate lookups are
// case-insensitive exact matches.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(plate), " ", ""))
}

// Visit statuses (derived, not stored)
const (
	VisitStatusScheduled  = "SCHEDULED"
	VisitStatusInProgress = "IN_PROGRESS"
	VisitStatusClosed     = "CLOSED"
)

// Visit is a time-windowed authorization for a visitor at a property
type Visit struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	VisitorID      uint       `gorm:"index;not null" json:"visitor_id"`
	PropertyID     uint       `gorm:"index;not null" json:"property_id"`
	ScheduledEntry time.Time  `gorm:"not null;index" json:"scheduled_entry"`
	ScheduledExit  time.Time  `gorm:"not null;index" json:"scheduled_exit"`
	ActualEntry    *time.Time `gorm:"index" json:"actual_entry"`
	ActualExit     *time.Time `json:"actual_exit"`
	Reason         string     `gorm:"size:200" json:"reason"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Visitor  *Visitor  `gorm:"foreignKey:VisitorID" json:"visitor,omitempty"`
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

func (Visit) TableName() string {
	return "visits"
}

// Status derives the visit state from the actual timestamps.
func (v *Visit) Status() string {
	switch {
	case v.ActualEntry == nil:
		return VisitStatusScheduled
	case v.ActualExit == nil:
		return VisitStatusInProgress
	default:
		return VisitStatusClosed
	}
}

// WindowContains reports whether now falls inside the scheduled window.
func (v *Visit) WindowContains(now time.Time) bool {
	return !now.Before(v.ScheduledEntry) && !now.After(v.ScheduledExit)
}

// VisitResponse DTO with the derived status included
type VisitResponse struct {
	ID             uint       `json:"id"`
	VisitorID      uint       `json:"visitor_id"`
	VisitorName    string     `json:"visitor_name,omitempty"`
	PropertyID     uint       `json:"property_id"`
	UnitCode       string     `json:"unit_code,omitempty"`
	ScheduledEntry time.Time  `json:"scheduled_entry"`
	ScheduledExit  time.Time  `json:"scheduled_exit"`
	ActualEntry    *time.Time `json:"actual_entry"`
	ActualExit     *time.Time `json:"actual_exit"`
	Status         string     `json:"status"`
	Reason         string     `json:"reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (v *Visit) ToResponse() *VisitResponse {
	resp := &VisitResponse{
		ID:             v.ID,
		VisitorID:      v.VisitorID,
		PropertyID:     v.PropertyID,
		ScheduledEntry: v.ScheduledEntry,
		ScheduledExit:  v.ScheduledExit,
		ActualEntry:    v.ActualEntry,
		ActualExit:     v.ActualExit,
		Status:         v.Status(),
		Reason:         v.Reason,
		CreatedAt:      v.CreatedAt,
	}

	if v.Visitor != nil {
		resp.VisitorName = v.Visitor.FullName
	}
	if v.Property != nil {
		resp.UnitCode = v.Property.UnitCode
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		&RefreshToken{},
		// Registry
		&Property{},
		&Resident{},
		&Visitor{},
		&Vehicle{},
		&Visit{},
		// Billing
		&Expense{},
		&Fine{},
		&Reservation{},
		&Payment{},
		// Community
		&MaintenanceTicket{},
		&Announcement{},
		&ReadReceipt{},
		&DeviceToken{},
		&AuditEntry{},
	)
}
