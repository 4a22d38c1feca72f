package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/repositories/settings"
)

type fakeSettings struct {
	settings.Repository
	doc       *models.UserSettings
	shortcuts []*models.KeyboardShortcut
}

func newFakeSettings(userID string) *fakeSettings {
	return &fakeSettings{doc: &models.UserSettings{
		UserID:            userID,
		Appearance:        json.RawMessage(`{}`),
		Notifications:     json.RawMessage(`{}`),
		InboxBehavior:     json.RawMessage(`{}`),
		Language:          json.RawMessage(`{}`),
		VacationResponder: json.RawMessage(`{}`),
	}}
}

func (f *fakeSettings) EnsureSettings(context.Context, string) (*models.UserSettings, error) {
	return f.doc, nil
}

func (f *fakeSettings) UpdateSection(_ context.Context, _, section string, value json.RawMessage) error {
	switch section {
	case "appearance":
		f.doc.Appearance = value
	case "notifications":
		f.doc.Notifications = value
	case "inboxBehavior":
		f.doc.InboxBehavior = value
	case "language":
		f.doc.Language = value
	case "vacationResponder":
		f.doc.VacationResponder = value
	}
	return nil
}

func (f *fakeSettings) ListShortcuts(context.Context, string) ([]*models.KeyboardShortcut, error) {
	return f.shortcuts, nil
}

func (f *fakeSettings) UpsertShortcut(_ context.Context, sc *models.KeyboardShortcut) (*models.KeyboardShortcut, error) {
	f.shortcuts = append(f.shortcuts, sc)
	return sc, nil
}

func (f *fakeSettings) ListSignatures(context.Context, string) ([]*models.Signature, error) {
	return nil, nil
}

func (f *fakeSettings) ListFilterRules(context.Context, string) ([]*models.FilterRule, error) {
	return nil, nil
}

func (f *fakeSettings) ListBlocked(context.Context, string) ([]*models.BlockedAddress, error) {
	return nil, nil
}

func TestMergeSection(t *testing.T) {
	tests := []struct {
		name    string
		current string
		patch   string
		want    map[string]any
	}{
		{
			"overlay wins on shared keys",
			`{"theme":"light","density":"default"}`,
			`{"theme":"dark"}`,
			map[string]any{"theme": "dark", "density": "default"},
		},
		{
			"untouched keys survive",
			`{"a":1,"b":2}`,
			`{"c":3}`,
			map[string]any{"a": float64(1), "b": float64(2), "c": float64(3)},
		},
		{
			"empty current",
			``,
			`{"theme":"dark"}`,
			map[string]any{"theme": "dark"},
		},
		{
			"merge is shallow",
			`{"nested":{"a":1,"b":2}}`,
			`{"nested":{"a":9}}`,
			map[string]any{"nested": map[string]any{"a": float64(9)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := mergeSection(json.RawMessage(tt.current), json.RawMessage(tt.patch))
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(merged, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeSection_InvalidPatch(t *testing.T) {
	_, err := mergeSection(json.RawMessage(`{}`), json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestUpdateSections_MergesAndIgnoresUnknown(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newFakeSettings("user-1")
	repo.doc.Appearance = json.RawMessage(`{"theme":"light","fontSize":"medium"}`)
	repo.shortcuts = []*models.KeyboardShortcut{{ID: "sc-1", Action: "compose", Key: "c"}}
	svc := NewSettingsService(db, &fakeManager{settings: repo})

	bundle, err := svc.UpdateSections(context.Background(), "user-1", map[string]json.RawMessage{
		"appearance": json.RawMessage(`{"theme":"dark"}`),
		"bogus":      json.RawMessage(`{"x":1}`),
	})
	require.NoError(t, err)

	var appearance map[string]string
	require.NoError(t, json.Unmarshal(bundle.Settings.Appearance, &appearance))
	assert.Equal(t, "dark", appearance["theme"])
	assert.Equal(t, "medium", appearance["fontSize"])
}

func TestGet_SeedsDefaultShortcutsOnce(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newFakeSettings("user-1")
	svc := NewSettingsService(db, &fakeManager{settings: repo})

	bundle, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, bundle.Shortcuts, len(defaultShortcuts))

	actions := map[string]bool{}
	for _, sc := range bundle.Shortcuts {
		actions[sc.Action] = true
		assert.True(t, sc.Enabled)
	}
	assert.True(t, actions["compose"])
	assert.True(t, actions["search"])
}

func TestGet_KeepsExistingShortcuts(t *testing.T) {
	db, _ := newTestDB(t)

	repo := newFakeSettings("user-1")
	repo.shortcuts = []*models.KeyboardShortcut{{ID: "sc-1", Action: "compose", Key: "x"}}
	svc := NewSettingsService(db, &fakeManager{settings: repo})

	bundle, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, bundle.Shortcuts, 1)
	assert.Equal(t, "x", bundle.Shortcuts[0].Key)
}

func TestReset_ClearsAllSections(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newFakeSettings("user-1")
	repo.doc.Appearance = json.RawMessage(`{"theme":"dark"}`)
	repo.shortcuts = []*models.KeyboardShortcut{{ID: "sc-1", Action: "compose", Key: "c"}}
	svc := NewSettingsService(db, &fakeManager{settings: repo})

	bundle, err := svc.Reset(context.Background(), "user-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(bundle.Settings.Appearance))
	assert.JSONEq(t, `{}`, string(bundle.Settings.VacationResponder))
}
