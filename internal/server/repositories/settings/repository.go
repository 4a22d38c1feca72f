package settings

import (
	"context"
	"encoding/json"

	"github.com/penguinmail/penguinmail/internal/server/models"
)

type Repository interface {
	GetSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	EnsureSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	UpdateSection(ctx context.Context, userID, section string, value json.RawMessage) error

	ListSignatures(ctx context.Context, userID string) ([]*models.Signature, error)
	GetSignature(ctx context.Context, userID, id string) (*models.Signature, error)
	CreateSignature(ctx context.Context, sig *models.Signature) (*models.Signature, error)
	UpdateSignature(ctx context.Context, sig *models.Signature) error
	DeleteSignature(ctx context.Context, userID, id string) error
	ClearDefaultSignatures(ctx context.Context, userID string) error
	MarkSignatureDefault(ctx context.Context, userID, id string) error

	ListFilterRules(ctx context.Context, userID string) ([]*models.FilterRule, error)
	CreateFilterRule(ctx context.Context, rule *models.FilterRule) (*models.FilterRule, error)
	UpdateFilterRule(ctx context.Context, rule *models.FilterRule) error
	DeleteFilterRule(ctx context.Context, userID, id string) error

	ListBlocked(ctx context.Context, userID string) ([]*models.BlockedAddress, error)
	CreateBlocked(ctx context.Context, block *models.BlockedAddress) (*models.BlockedAddress, error)
	DeleteBlockedByEmail(ctx context.Context, userID, email string) error

	ListShortcuts(ctx context.Context, userID string) ([]*models.KeyboardShortcut, error)
	GetShortcut(ctx context.Context, userID, id string) (*models.KeyboardShortcut, error)
	UpsertShortcut(ctx context.Context, sc *models.KeyboardShortcut) (*models.KeyboardShortcut, error)
	UpdateShortcut(ctx context.Context, sc *models.KeyboardShortcut) error
}
