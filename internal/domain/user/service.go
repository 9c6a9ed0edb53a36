package user

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SetCommissionAccess(ctx context.Context, id uuid.UUID, access CommissionAccess) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	user := &User{
		Email:            input.Email,
		Name:             input.Name,
		Role:             input.Role,
		CommissionAccess: input.CommissionAccess,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) SetCommissionAccess(ctx context.Context, id uuid.UUID, access CommissionAccess) (*User, error) {
	if !access.IsValid() {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"commissionAccess": "must be one of NONE OWN_READ OWN_EDIT ALL ALL_EDIT"})
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.CommissionAccess = access
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
