package dto

type CreateUserRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Name             string `json:"name" binding:"required,not_empty"`
	Role             string `json:"role,omitempty" binding:"omitempty,oneof=ADMIN TEAM CLIENT"`
	CommissionAccess string `json:"commissionAccess,omitempty" binding:"omitempty,oneof=NONE OWN_READ OWN_EDIT ALL ALL_EDIT"`
}

type UpdateCommissionAccessRequest struct {
	CommissionAccess string `json:"commissionAccess" binding:"required,oneof=NONE OWN_READ OWN_EDIT ALL ALL_EDIT"`
}
