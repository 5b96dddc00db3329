package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Billing Tables: Expense / Fine / Reservation / Payment
// ============================================================

// Expense is a periodic charge against a property.
// The (property, month, year) unique index makes the monthly batch
// idempotent per property.
type Expense struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PropertyID  uint           `gorm:"not null;index;uniqueIndex:idx_expense_period" json:"property_id"`
	Month       int            `gorm:"not null;uniqueIndex:idx_expense_period" json:"month"`
	Year        int            `gorm:"not null;uniqueIndex:idx_expense_period" json:"year"`
	Amount      float64        `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string         `gorm:"size:200" json:"description"`
	IssueDate   time.Time      `gorm:"type:date" json:"issue_date"`
	DueDate     time.Time      `gorm:"type:date" json:"due_date"`
	Paid        bool           `gorm:"default:false;index" json:"paid"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

func (Expense) TableName() string {
	return "expenses"
}

// Fine is a penalty charge against a property
type Fine struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PropertyID  uint           `gorm:"not null;index" json:"property_id"`
	Amount      float64        `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reason      string         `gorm:"size:200;not null" json:"reason"`
	IssueDate   time.Time      `gorm:"type:date" json:"issue_date"`
	Paid        bool           `gorm:"default:false;index" json:"paid"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

func (Fine) TableName() string {
	return "fines"
}

// Reservation is a paid booking of a common area by a property
type Reservation struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	PropertyID uint           `gorm:"not null;index" json:"property_id"`
	AreaName   string         `gorm:"size:100;not null" json:"area_name"`
	StartsAt   time.Time      `gorm:"not null" json:"starts_at"`
	EndsAt     time.Time      `gorm:"not null" json:"ends_at"`
	Amount     float64        `gorm:"type:decimal(12,2);not null" json:"amount"`
	Paid       bool           `gorm:"default:false;index" json:"paid"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// Payment target types. A payment references exactly one billing target,
// identified by the (TargetType, TargetID) pair instead of three nullable
// foreign keys.
const (
	PaymentTargetExpense     = "EXPENSE"
	PaymentTargetFine        = "FINE"
	PaymentTargetReservation = "RESERVATION"
)

// Payment methods
const (
	PaymentMethodManual  = "MANUAL"
	PaymentMethodGateway = "GATEWAY"
)

// Payment is a settled amount against a billing target
type Payment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TargetType string    `gorm:"size:20;not null;index:idx_payment_target" json:"target_type"`
	TargetID   uint      `gorm:"not null;index:idx_payment_target" json:"target_id"`
	Amount     float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method     string    `gorm:"size:20;not null;default:'MANUAL'" json:"method"`
	GatewayRef string    `gorm:"size:100" json:"gateway_ref,omitempty"`
	PaidBy     *uint     `json:"paid_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Payer *User `gorm:"foreignKey:PaidBy" json:"payer,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// ValidPaymentTarget reports whether t is a known payment target type.
func ValidPaymentTarget(t string) bool {
	switch t {
	case PaymentTargetExpense, PaymentTargetFine, PaymentTargetReservation:
		return true
	}
	return false
}
