package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service provides business logic for wallet operations
type Service struct {
	repo Repository
}

// NewService creates a new wallet service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new wallet for a user
func (s *Service) Create(ctx context.Context, wallet *Wallet) (*Wallet, error) {
	if err := wallet.ValidateCreate(); err != nil {
		return nil, err
	}

	// Check if wallet with same name already exists for user
	exists, err := s.repo.ExistsByUserAndName(ctx, wallet.UserID, wallet.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check wallet existence: %w", err)
	}

	if exists {
		return nil, ErrDuplicateWalletName
	}

	wallet.ID = uuid.New()

	if err := s.repo.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	return wallet, nil
}

// GetByID retrieves a wallet by ID and validates user ownership
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Wallet, error) {
	wallet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Verify wallet belongs to requesting user
	if wallet.UserID != userID {
		return nil, ErrUnauthorizedAccess
	}

	return wallet, nil
}

// List retrieves all wallets for a user
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Wallet, error) {
	wallets, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	return wallets, nil
}
