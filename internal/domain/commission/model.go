package commission

import (
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = apperrors.NotFound("compensation profile not found")
	ErrInvalidInput    = apperrors.Validation("validation failed", nil)
	ErrInvalidRange    = apperrors.Validation("invalid date range", nil)
	ErrForbidden       = apperrors.Forbidden("not allowed to access this commission")
	ErrUnknownCaller   = apperrors.Unauthorized("unknown caller")
	ErrProfileConflict = apperrors.Conflict("compensation profile changed concurrently")
)

// CompensationProfile is the pay basis of one user.
type CompensationProfile struct {
	ID             uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID        `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_compensation_user"`
	HasFixedSalary bool             `json:"hasFixedSalary" gorm:"not null;default:false"`
	FixedSalary    *decimal.Decimal `json:"fixedSalary" gorm:"type:numeric(12,2)"`
	HourRate       decimal.Decimal  `json:"hourRate" gorm:"type:numeric(12,2);not null"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`

	User *user.User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (CompensationProfile) TableName() string {
	return "compensation_profiles"
}

func (p *CompensationProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Fixed returns the fixed salary that counts toward pay.
func (p *CompensationProfile) Fixed() decimal.Decimal {
	if p == nil || !p.HasFixedSalary || p.FixedSalary == nil {
		return decimal.Zero
	}
	return *p.FixedSalary
}

// UpsertProfileInput is the body of a profile write.
type UpsertProfileInput struct {
	HasFixedSalary bool
	FixedSalary    *decimal.Decimal
	HourRate       *decimal.Decimal
}

func (in UpsertProfileInput) validate() error {
	details := map[string]string{}
	if in.HourRate == nil {
		details["hourRate"] = "required"
	} else if in.HourRate.IsNegative() {
		details["hourRate"] = "must be >= 0"
	}
	if in.FixedSalary != nil && in.FixedSalary.IsNegative() {
		details["fixedSalary"] = "must be >= 0"
	}
	if in.HasFixedSalary && in.FixedSalary == nil {
		details["fixedSalary"] = "required when hasFixedSalary is true"
	}
	if len(details) > 0 {
		return ErrInvalidInput.WithDetails(details)
	}
	return nil
}

// Range is an inclusive span of calendar days.
type Range struct {
	From time.Time
	To   time.Time
}

// Bounds returns [From 00:00:00, To 23:59:59.999999999] in loc.
func (r Range) Bounds(loc *time.Location) (time.Time, time.Time) {
	from := time.Date(r.From.Year(), r.From.Month(), r.From.Day(), 0, 0, 0, 0, loc)
	to := time.Date(r.To.Year(), r.To.Month(), r.To.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return from, to
}

// Result is the derived pay of one user.
type Result struct {
	UserID           uuid.UUID       `json:"userId"`
	MinutesCompleted int             `json:"minutesCompleted"`
	VariablePay      decimal.Decimal `json:"variablePay"`
	FixedSalary      decimal.Decimal `json:"fixedSalary"`
	TotalPay         decimal.Decimal `json:"totalPay"`
}

// Statement is a user's profile together with the pay derived from it.
type Statement struct {
	User    *user.User           `json:"user"`
	Profile *CompensationProfile `json:"profile"`
	Result  Result               `json:"result"`
}
