package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Community Tables: Maintenance / Announcement / Notifications / Audit
// ============================================================

// Maintenance ticket statuses
const (
	TicketStatusOpen       = "OPEN"
	TicketStatusInProgress = "IN_PROGRESS"
	TicketStatusResolved   = "RESOLVED"
	TicketStatusClosed     = "CLOSED"
)

// Maintenance ticket priorities
const (
	TicketPriorityLow    = "LOW"
	TicketPriorityMedium = "MEDIUM"
	TicketPriorityHigh   = "HIGH"
)

// MaintenanceTicket is a repair request raised against a property
type MaintenanceTicket struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PropertyID  uint           `gorm:"not null;index" json:"property_id"`
	ReporterID  uint           `gorm:"not null;index" json:"reporter_id"`
	Category    string         `gorm:"size:50;not null" json:"category"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Status      string         `gorm:"size:20;not null;default:'OPEN';index" json:"status"`
	Priority    string         `gorm:"size:20;not null;default:'MEDIUM'" json:"priority"`
	ResolvedAt  *time.Time     `json:"resolved_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Reporter *User     `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
}

func (MaintenanceTicket) TableName() string {
	return "maintenance_tickets"
}

// Announcement audiences
const (
	AudienceAll     = "ALL"
	AudienceOwners  = "OWNERS"
	AudienceTenants = "TENANTS"
)

// Announcement is a message published to a role-filtered resident population
type Announcement struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Body        string         `gorm:"type:text;not null" json:"body"`
	Audience    string         `gorm:"size:20;not null;default:'ALL'" json:"audience"`
	PublishedBy uint           `gorm:"not null" json:"published_by"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Publisher *User         `gorm:"foreignKey:PublishedBy" json:"publisher,omitempty"`
	Receipts  []ReadReceipt `gorm:"foreignKey:AnnouncementID" json:"receipts,omitempty"`
}

func (Announcement) TableName() string {
	return "announcements"
}

// ValidAudience reports whether a is a known announcement audience.
func ValidAudience(a string) bool {
	switch a {
	case AudienceAll, AudienceOwners, AudienceTenants:
		return true
	}
	return false
}

// IncludesRole reports whether a resident role belongs to the audience.
func (a *Announcement) IncludesRole(residentRole string) bool {
	switch a.Audience {
	case AudienceOwners:
		return residentRole == ResidentRoleOwner
	case AudienceTenants:
		return residentRole == ResidentRoleTenant
	default:
		return true
	}
}

// ReadReceipt records that a resident has read an announcement.
// The composite unique index makes mark-as-read idempotent.
type ReadReceipt struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AnnouncementID uint      `gorm:"not null;uniqueIndex:idx_receipt_pair" json:"announcement_id"`
	ResidentID     uint      `gorm:"not null;uniqueIndex:idx_receipt_pair" json:"resident_id"`
	ReadAt         time.Time `gorm:"autoCreateTime" json:"read_at"`

	// Relations
	Announcement *Announcement `gorm:"foreignKey:AnnouncementID" json:"-"`
	Resident     *Resident     `gorm:"foreignKey:ResidentID" json:"resident,omitempty"`
}

func (ReadReceipt) TableName() string {
	return "read_receipts"
}

// Device platforms
const (
	PlatformAndroid = "ANDROID"
	PlatformIOS     = "IOS"
	PlatformWeb     = "WEB"
)

// DeviceToken is a push-delivery address for a user
type DeviceToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;size:255;not null" json:"token"`
	Platform  string    `gorm:"size:20;not null" json:"platform"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}

// Audit actions
const (
	AuditLoginSuccess     = "LOGIN_SUCCESS"
	AuditLoginFailure     = "LOGIN_FAILURE"
	AuditLogout           = "LOGOUT"
	AuditAccessGranted    = "ACCESS_GRANTED"
	AuditAccessDenied     = "ACCESS_DENIED"
	AuditExitRegistered   = "EXIT_REGISTERED"
	AuditPaymentCreated   = "PAYMENT_CREATED"
	AuditExpenseBatch     = "EXPENSE_BATCH"
	AuditVisitExpired     = "VISIT_EXPIRED"
	AuditTicketCreated    = "TICKET_CREATED"
	AuditTicketUpdated    = "TICKET_UPDATED"
	AuditAnnouncementSent = "ANNOUNCEMENT_PUBLISHED"
)

// AuditEntry is an append-only record of a notable action.
// UserID is nullable: failed logins have no acting user.
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	IPAddress string    `gorm:"size:50" json:"ip_address"`
	Action    string    `gorm:"size:50;not null;index" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
