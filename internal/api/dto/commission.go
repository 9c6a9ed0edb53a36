package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpsertCompensationRequest is the body of PUT /api/commissions/:userId.
// Money is decoded straight into decimals so no float rounding happens on input.
type UpsertCompensationRequest struct {
	HasFixedSalary bool             `json:"hasFixedSalary"`
	FixedSalary    *decimal.Decimal `json:"fixedSalary"`
	HourRate       *decimal.Decimal `json:"hourRate" binding:"required"`
}

// CommissionQuery carries the optional inclusive date range.
type CommissionQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type CompensationProfileResponse struct {
	HasFixedSalary bool      `json:"hasFixedSalary"`
	FixedSalary    *float64  `json:"fixedSalary"`
	HourRate       float64   `json:"hourRate"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CommissionResponse struct {
	UserID           uuid.UUID                    `json:"userId"`
	Name             string                       `json:"name"`
	Email            string                       `json:"email"`
	Role             string                       `json:"role"`
	Profile          *CompensationProfileResponse `json:"profile"`
	MinutesCompleted int                          `json:"minutesCompleted"`
	VariablePay      float64                      `json:"variablePay"`
	FixedSalary      float64                      `json:"fixedSalary"`
	TotalPay         float64                      `json:"totalPay"`
}
