package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/dbx"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/repositories/repomanager"
)

// SettingsBundle aggregates everything the settings document exposes: the
// per-section preference JSON plus the owned sub-resources.
type SettingsBundle struct {
	Settings   *models.UserSettings
	Signatures []*models.Signature
	Filters    []*models.FilterRule
	Blocked    []*models.BlockedAddress
	Shortcuts  []*models.KeyboardShortcut
}

// SignatureUpdate carries the fields a signature PATCH may change.
type SignatureUpdate struct {
	Name      *string
	Content   *string
	IsDefault *bool
}

// FilterUpdate carries the fields a filter PATCH may change.
type FilterUpdate struct {
	Name       *string
	Enabled    *bool
	Conditions json.RawMessage
	MatchAll   *bool
	Actions    json.RawMessage
}

// ShortcutUpdate carries the fields a keyboard shortcut PATCH may change.
type ShortcutUpdate struct {
	Key       *string
	Modifiers json.RawMessage
	Enabled   *bool
}

// SettingsService manages user preferences and their sub-resources
// (signatures, filter rules, blocked addresses, keyboard shortcuts).
type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager) *SettingsService {
	return &SettingsService{db: db, repomanager: m}
}

type defaultShortcut struct {
	action    string
	key       string
	modifiers []string
}

// defaultShortcuts is the binding set a fresh user starts with.
var defaultShortcuts = []defaultShortcut{
	{"compose", "c", nil},
	{"reply", "r", nil},
	{"replyAll", "a", nil},
	{"forward", "f", nil},
	{"archive", "e", nil},
	{"delete", "#", nil},
	{"markRead", "i", []string{"shift"}},
	{"markUnread", "u", []string{"shift"}},
	{"star", "s", nil},
	{"selectAll", "a", []string{"ctrl"}},
	{"search", "/", nil},
	{"escape", "Escape", nil},
	{"nextEmail", "j", nil},
	{"prevEmail", "k", nil},
	{"openEmail", "o", nil},
	{"goToInbox", "g", nil},
	{"send", "Enter", []string{"ctrl"}},
}

// Get returns the full settings bundle, creating the settings row and the
// default keyboard shortcuts on first access.
func (s *SettingsService) Get(ctx context.Context, userID string) (*SettingsBundle, error) {
	repo := s.repomanager.Settings(s.db)

	settings, err := repo.EnsureSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	shortcuts, err := repo.ListShortcuts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(shortcuts) == 0 {
		if shortcuts, err = s.seedShortcuts(ctx, userID); err != nil {
			return nil, err
		}
	}

	signatures, err := repo.ListSignatures(ctx, userID)
	if err != nil {
		return nil, err
	}
	filters, err := repo.ListFilterRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	blocked, err := repo.ListBlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SettingsBundle{
		Settings:   settings,
		Signatures: signatures,
		Filters:    filters,
		Blocked:    blocked,
		Shortcuts:  shortcuts,
	}, nil
}

func (s *SettingsService) seedShortcuts(ctx context.Context, userID string) ([]*models.KeyboardShortcut, error) {
	var seeded []*models.KeyboardShortcut
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Settings(tx)
		for _, d := range defaultShortcuts {
			mods, err := json.Marshal(d.modifiers)
			if err != nil {
				return err
			}
			if d.modifiers == nil {
				mods = []byte("[]")
			}
			sc := &models.KeyboardShortcut{
				UserID:    userID,
				Action:    d.action,
				Key:       d.key,
				Modifiers: mods,
				Enabled:   true,
			}
			if _, err := repo.UpsertShortcut(ctx, sc); err != nil {
				return err
			}
			seeded = append(seeded, sc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error seeding shortcuts: %w", err)
	}
	return seeded, nil
}

// UpdateSections shallow-merges each provided section into the stored
// document: top-level keys from the patch win, everything else survives.
func (s *SettingsService) UpdateSections(ctx context.Context, userID string, sections map[string]json.RawMessage) (*SettingsBundle, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Settings(tx)
		settings, err := repo.EnsureSettings(ctx, userID)
		if err != nil {
			return err
		}

		stored := map[string]json.RawMessage{
			"appearance":        settings.Appearance,
			"notifications":     settings.Notifications,
			"inboxBehavior":     settings.InboxBehavior,
			"language":          settings.Language,
			"vacationResponder": settings.VacationResponder,
		}

		for name, patch := range sections {
			current, ok := stored[name]
			if !ok {
				continue
			}
			merged, err := mergeSection(current, patch)
			if err != nil {
				return err
			}
			if err := repo.UpdateSection(ctx, userID, name, merged); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error updating settings: %w", err)
	}
	return s.Get(ctx, userID)
}

func mergeSection(current, patch json.RawMessage) (json.RawMessage, error) {
	base := map[string]json.RawMessage{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &base); err != nil {
			return nil, err
		}
	}
	overlay := map[string]json.RawMessage{}
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return nil, err
	}
	for k, v := range overlay {
		base[k] = v
	}
	return json.Marshal(base)
}

// Reset clears every preference section back to its empty document.
func (s *SettingsService) Reset(ctx context.Context, userID string) (*SettingsBundle, error) {
	empty := json.RawMessage(`{}`)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Settings(tx)
		if _, err := repo.EnsureSettings(ctx, userID); err != nil {
			return err
		}
		for _, name := range []string{"appearance", "notifications", "inboxBehavior", "language", "vacationResponder"} {
			if err := repo.UpdateSection(ctx, userID, name, empty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error resetting settings: %w", err)
	}
	return s.Get(ctx, userID)
}

// CreateSignature adds a signature. Marking it default clears the previous
// default in the same transaction.
func (s *SettingsService) CreateSignature(ctx context.Context, userID, name, content string, isDefault bool) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Settings(tx)
		if isDefault {
			if err := repo.ClearDefaultSignatures(ctx, userID); err != nil {
				return err
			}
		}
		_, err := repo.CreateSignature(ctx, &models.Signature{
			UserID:    userID,
			Name:      name,
			Content:   content,
			IsDefault: isDefault,
		})
		return err
	})
}

func (s *SettingsService) UpdateSignature(ctx context.Context, userID, id string, upd SignatureUpdate) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Settings(tx)
		sig, err := repo.GetSignature(ctx, userID, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			sig.Name = *upd.Name
		}
		if upd.Content != nil {
			sig.Content = *upd.Content
		}
		if err := repo.UpdateSignature(ctx, sig); err != nil {
			return err
		}

		if upd.IsDefault != nil {
			if *upd.IsDefault {
				if err := repo.ClearDefaultSignatures(ctx, userID); err != nil {
					return err
				}
				return repo.MarkSignatureDefault(ctx, userID, id)
			}
			if sig.IsDefault {
				return repo.ClearDefaultSignatures(ctx, userID)
			}
		}
		return nil
	})
}

func (s *SettingsService) DeleteSignature(ctx context.Context, userID, id string) error {
	return s.repomanager.Settings(s.db).DeleteSignature(ctx, userID, id)
}

func (s *SettingsService) CreateFilter(ctx context.Context, rule *models.FilterRule) error {
	if len(rule.Conditions) == 0 {
		rule.Conditions = json.RawMessage(`[]`)
	}
	if len(rule.Actions) == 0 {
		rule.Actions = json.RawMessage(`[]`)
	}
	_, err := s.repomanager.Settings(s.db).CreateFilterRule(ctx, rule)
	return err
}

func (s *SettingsService) UpdateFilter(ctx context.Context, userID, id string, upd FilterUpdate) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Settings(tx)
		rules, err := repo.ListFilterRules(ctx, userID)
		if err != nil {
			return err
		}
		var rule *models.FilterRule
		for _, f := range rules {
			if f.ID == id {
				rule = f
				break
			}
		}
		if rule == nil {
			return common.ErrorNotFound
		}

		if upd.Name != nil {
			rule.Name = *upd.Name
		}
		if upd.Enabled != nil {
			rule.Enabled = *upd.Enabled
		}
		if upd.Conditions != nil {
			rule.Conditions = upd.Conditions
		}
		if upd.MatchAll != nil {
			rule.MatchAll = *upd.MatchAll
		}
		if upd.Actions != nil {
			rule.Actions = upd.Actions
		}
		return repo.UpdateFilterRule(ctx, rule)
	})
}

func (s *SettingsService) DeleteFilter(ctx context.Context, userID, id string) error {
	return s.repomanager.Settings(s.db).DeleteFilterRule(ctx, userID, id)
}

// BlockAddress records a blocked sender. Addresses are stored lowercased
// and blocking twice is a no-op.
func (s *SettingsService) BlockAddress(ctx context.Context, userID, email string) error {
	_, err := s.repomanager.Settings(s.db).CreateBlocked(ctx, &models.BlockedAddress{
		UserID: userID,
		Email:  strings.ToLower(email),
	})
	return err
}

func (s *SettingsService) UnblockAddress(ctx context.Context, userID, email string) error {
	return s.repomanager.Settings(s.db).DeleteBlockedByEmail(ctx, userID, strings.ToLower(email))
}

func (s *SettingsService) UpdateShortcut(ctx context.Context, userID, id string, upd ShortcutUpdate) error {
	repo := s.repomanager.Settings(s.db)
	sc, err := repo.GetShortcut(ctx, userID, id)
	if err != nil {
		return err
	}
	if upd.Key != nil {
		sc.Key = *upd.Key
	}
	if upd.Modifiers != nil {
		sc.Modifiers = upd.Modifiers
	}
	if upd.Enabled != nil {
		sc.Enabled = *upd.Enabled
	}
	if err := repo.UpdateShortcut(ctx, sc); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error updating shortcut: %w", err)
	}
	return nil
}
