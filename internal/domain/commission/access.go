package commission

import (
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/google/uuid"
)

// CanReadAll reports whether the caller sees every user's commission.
func CanReadAll(caller *user.User) bool {
	if caller.IsAdmin() {
		return true
	}
	return caller.CommissionAccess == user.CommissionAccessAll ||
		caller.CommissionAccess == user.CommissionAccessAllEdit
}

// CanRead reports whether the caller may read target's commission. Self may always read.
func CanRead(caller *user.User, target uuid.UUID) bool {
	return caller.ID == target || CanReadAll(caller)
}

// CanWrite reports whether the caller may change target's compensation profile.
func CanWrite(caller *user.User, target uuid.UUID) bool {
	if caller.IsAdmin() || caller.CommissionAccess == user.CommissionAccessAllEdit {
		return true
	}
	return caller.ID == target && caller.CommissionAccess == user.CommissionAccessOwnEdit
}
