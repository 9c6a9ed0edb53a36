package user

import (
	"strings"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = apperrors.NotFound("user not found")
	ErrInvalidInput = apperrors.Validation("invalid user input", nil)
	ErrEmailTaken   = apperrors.Conflict("email already registered")
)

// Role is the coarse account type.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleTeam   Role = "TEAM"
	RoleClient Role = "CLIENT"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeam, RoleClient:
		return true
	}
	return false
}

// CommissionAccess grants access to compensation profiles beyond the user's own read.
type CommissionAccess string

const (
	CommissionAccessNone    CommissionAccess = "NONE"
	CommissionAccessOwnRead CommissionAccess = "OWN_READ"
	CommissionAccessOwnEdit CommissionAccess = "OWN_EDIT"
	CommissionAccessAll     CommissionAccess = "ALL"
	CommissionAccessAllEdit CommissionAccess = "ALL_EDIT"
)

func (a CommissionAccess) IsValid() bool {
	switch a {
	case CommissionAccessNone, CommissionAccessOwnRead, CommissionAccessOwnEdit,
		CommissionAccessAll, CommissionAccessAllEdit:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID               uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Email            string           `json:"email" gorm:"type:varchar(255);uniqueIndex:idx_user_email;not null"`
	Name             string           `json:"name" gorm:"type:varchar(255);not null"`
	Role             Role             `json:"role" gorm:"type:varchar(10);not null;index:idx_user_role"`
	CommissionAccess CommissionAccess `json:"commissionAccess" gorm:"type:varchar(10);not null"`
	IsActive         bool             `json:"isActive" gorm:"not null;default:true"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeSave normalises and validates the enum columns on every write.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleTeam
	}
	if u.CommissionAccess == "" {
		u.CommissionAccess = CommissionAccessOwnRead
	}
	return u.Validate()
}

func (u *User) Validate() error {
	details := map[string]string{}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		details["email"] = "must be a valid email"
	}
	if strings.TrimSpace(u.Name) == "" {
		details["name"] = "required"
	}
	if !u.Role.IsValid() {
		details["role"] = "must be one of ADMIN TEAM CLIENT"
	}
	if !u.CommissionAccess.IsValid() {
		details["commissionAccess"] = "must be one of NONE OWN_READ OWN_EDIT ALL ALL_EDIT"
	}
	if len(details) > 0 {
		return ErrInvalidInput.WithDetails(details)
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type CreateUserInput struct {
	Email            string
	Name             string
	Role             Role
	CommissionAccess CommissionAccess
}
