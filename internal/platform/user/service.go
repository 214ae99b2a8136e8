package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/cashtrack/internal/platform/wallet"
)

// Service handles user business logic
type Service struct {
	repo    Repository
	wallets *wallet.Service
}

// NewService creates a new user service. The wallet service is used to seed
// the default Cash and Bank wallets for every new account.
func NewService(repo Repository, wallets *wallet.Service) *Service {
	return &Service{
		repo:    repo,
		wallets: wallets,
	}
}

// Register registers a new user and seeds their default wallets
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	u := &User{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := u.ValidateEmail(); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check if user exists: %w", err)
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	if err := u.SetPassword(password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Every account starts with one wallet per kind so summaries are
	// meaningful from day one.
	defaults := []*wallet.Wallet{
		{UserID: u.ID, Name: "Main Cash", Kind: wallet.KindCash},
		{UserID: u.ID, Name: "Main Bank", Kind: wallet.KindBank},
	}
	for _, w := range defaults {
		if _, err := s.wallets.Create(ctx, w); err != nil && !errors.Is(err, wallet.ErrDuplicateWalletName) {
			return nil, fmt.Errorf("failed to seed default wallet %q: %w", w.Name, err)
		}
	}

	return u, nil
}

// Login authenticates a user with email and password
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Don't reveal that the user doesn't exist
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := u.CheckPassword(password); err != nil {
		return nil, err
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
