package httpapi

import (
	"encoding/json"
	"time"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/pagination"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

// listEnvelope is the shape of every paginated collection response.
type listEnvelope struct {
	Data       any `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func envelope(data any, p pagination.Page) listEnvelope {
	return listEnvelope{
		Data:       data,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

type tokenOut struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func tokenPairOut(pair *services.TokenPair) tokenOut {
	return tokenOut{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		TokenType:    "Bearer",
	}
}

type accountOut struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Color              string    `json:"color"`
	DisplayName        string    `json:"displayName"`
	Signature          string    `json:"signature"`
	DefaultSignatureID string    `json:"defaultSignatureId"`
	Avatar             string    `json:"avatar"`
	IsDefault          bool      `json:"isDefault"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func accountToWire(a *models.Account) accountOut {
	return accountOut{
		ID:                 a.ID,
		Email:              a.Email,
		Name:               a.Name,
		Color:              a.Color,
		DisplayName:        a.DisplayName,
		Signature:          a.Signature,
		DefaultSignatureID: a.DefaultSignatureID,
		Avatar:             a.Avatar,
		IsDefault:          a.IsDefault,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func accountsToWire(list []*models.Account) []accountOut {
	out := make([]accountOut, 0, len(list))
	for _, a := range list {
		out = append(out, accountToWire(a))
	}
	return out
}

type addressOut struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type attachmentBrief struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	MimeType string  `json:"mimeType"`
	URL      *string `json:"url"`
}

func attachmentToWire(a *models.Attachment) attachmentBrief {
	url := "/api/attachments/" + a.ID + "/download"
	return attachmentBrief{
		ID:       a.ID,
		Name:     a.Name,
		Size:     a.Size,
		MimeType: a.MimeType,
		URL:      &url,
	}
}

type emailOut struct {
	ID              string            `json:"id"`
	AccountID       string            `json:"accountId"`
	AccountColor    string            `json:"accountColor"`
	From            addressOut        `json:"from"`
	To              []addressOut      `json:"to"`
	Cc              []addressOut      `json:"cc"`
	Bcc             []addressOut      `json:"bcc"`
	Subject         string            `json:"subject"`
	Preview         string            `json:"preview"`
	Body            string            `json:"body"`
	Date            time.Time         `json:"date"`
	IsRead          bool              `json:"isRead"`
	IsStarred       bool              `json:"isStarred"`
	HasAttachment   bool              `json:"hasAttachment"`
	Attachments     []attachmentBrief `json:"attachments"`
	Folder          string            `json:"folder"`
	Labels          []string          `json:"labels"`
	ThreadID        *string           `json:"threadId"`
	ReplyToID       *string           `json:"replyToId"`
	ForwardedFromID *string           `json:"forwardedFromId"`
	IsDraft         bool              `json:"isDraft"`
	ScheduledSendAt *time.Time        `json:"scheduledSendAt"`
	SnoozeUntil     *time.Time        `json:"snoozeUntil"`
	SnoozedFrom     *string           `json:"snoozedFromFolder"`
}

func emailToWire(e *models.Email) emailOut {
	to := []addressOut{}
	cc := []addressOut{}
	bcc := []addressOut{}
	for _, rcpt := range e.Recipients {
		addr := addressOut{Name: rcpt.Name, Email: rcpt.Address}
		switch rcpt.Kind {
		case models.RecipientTo:
			to = append(to, addr)
		case models.RecipientCc:
			cc = append(cc, addr)
		case models.RecipientBcc:
			bcc = append(bcc, addr)
		}
	}

	attachments := make([]attachmentBrief, 0, len(e.Attachments))
	for _, a := range e.Attachments {
		attachments = append(attachments, attachmentToWire(a))
	}

	labels := e.LabelIDs
	if labels == nil {
		labels = []string{}
	}

	return emailOut{
		ID:              e.ID,
		AccountID:       e.AccountID,
		AccountColor:    e.AccountColor,
		From:            addressOut{Name: e.SenderName, Email: e.SenderEmail},
		To:              to,
		Cc:              cc,
		Bcc:             bcc,
		Subject:         e.Subject,
		Preview:         e.Preview,
		Body:            e.Body,
		Date:            e.CreatedAt,
		IsRead:          e.IsRead,
		IsStarred:       e.IsStarred,
		HasAttachment:   e.HasAttachment,
		Attachments:     attachments,
		Folder:          e.Folder,
		Labels:          labels,
		ThreadID:        e.ThreadID,
		ReplyToID:       e.ReplyToID,
		ForwardedFromID: e.ForwardedFromID,
		IsDraft:         e.IsDraft,
		ScheduledSendAt: e.ScheduledSendAt,
		SnoozeUntil:     e.SnoozeUntil,
		SnoozedFrom:     e.SnoozedFromFolder,
	}
}

func emailsToWire(list []*models.Email) []emailOut {
	out := make([]emailOut, 0, len(list))
	for _, e := range list {
		out = append(out, emailToWire(e))
	}
	return out
}

type labelOut struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func labelToWire(l *models.Label) labelOut {
	return labelOut{ID: l.ID, Name: l.Name, Color: l.Color}
}

func labelsToWire(list []*models.Label) []labelOut {
	out := make([]labelOut, 0, len(list))
	for _, l := range list {
		out = append(out, labelToWire(l))
	}
	return out
}

type folderOut struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	ParentID  *string   `json:"parentId"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func folderToWire(f *models.CustomFolder) folderOut {
	return folderOut{
		ID:        f.ID,
		Name:      f.Name,
		Color:     f.Color,
		Icon:      f.Icon,
		ParentID:  f.ParentID,
		Order:     f.Ord,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func foldersToWire(list []*models.CustomFolder) []folderOut {
	out := make([]folderOut, 0, len(list))
	for _, f := range list {
		out = append(out, folderToWire(f))
	}
	return out
}

type contactOut struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar"`
	Phone      string    `json:"phone"`
	Company    string    `json:"company"`
	Notes      string    `json:"notes"`
	IsFavorite bool      `json:"isFavorite"`
	Groups     []string  `json:"groups"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func contactToWire(c *models.Contact) contactOut {
	groups := c.GroupIDs
	if groups == nil {
		groups = []string{}
	}
	return contactOut{
		ID:         c.ID,
		Email:      c.Email,
		Name:       c.Name,
		Avatar:     c.Avatar,
		Phone:      c.Phone,
		Company:    c.Company,
		Notes:      c.Notes,
		IsFavorite: c.IsFavorite,
		Groups:     groups,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func contactsToWire(list []*models.Contact) []contactOut {
	out := make([]contactOut, 0, len(list))
	for _, c := range list {
		out = append(out, contactToWire(c))
	}
	return out
}

type contactGroupOut struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	ContactIDs []string  `json:"contactIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func contactGroupToWire(g *models.ContactGroup) contactGroupOut {
	contactIDs := g.ContactIDs
	if contactIDs == nil {
		contactIDs = []string{}
	}
	return contactGroupOut{
		ID:         g.ID,
		Name:       g.Name,
		Color:      g.Color,
		ContactIDs: contactIDs,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

func contactGroupsToWire(list []*models.ContactGroup) []contactGroupOut {
	out := make([]contactGroupOut, 0, len(list))
	for _, g := range list {
		out = append(out, contactGroupToWire(g))
	}
	return out
}

// Settings sections decode the stored JSON onto structs pre-filled with
// defaults, so a partially populated document still renders complete.
type appearanceOut struct {
	Theme    string `json:"theme"`
	Density  string `json:"density"`
	FontSize string `json:"fontSize"`
}

type notificationsOut struct {
	EmailNotifications   bool `json:"emailNotifications"`
	DesktopNotifications bool `json:"desktopNotifications"`
	SoundEnabled         bool `json:"soundEnabled"`
	NotifyOnNewEmail     bool `json:"notifyOnNewEmail"`
	NotifyOnMention      bool `json:"notifyOnMention"`
}

type inboxBehaviorOut struct {
	DefaultReplyBehavior string `json:"defaultReplyBehavior"`
	SendBehavior         string `json:"sendBehavior"`
	ConversationView     bool   `json:"conversationView"`
	ReadingPanePosition  string `json:"readingPanePosition"`
	AutoAdvance          string `json:"autoAdvance"`
	MarkAsReadDelay      int    `json:"markAsReadDelay"`
}

type languageOut struct {
	Language   string `json:"language"`
	Timezone   string `json:"timezone"`
	DateFormat string `json:"dateFormat"`
	TimeFormat string `json:"timeFormat"`
}

type vacationResponderOut struct {
	Enabled        bool       `json:"enabled"`
	Subject        string     `json:"subject"`
	Message        string     `json:"message"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	SendToContacts bool       `json:"sendToContacts"`
	SendToEveryone bool       `json:"sendToEveryone"`
}

type signatureOut struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	IsDefault bool   `json:"isDefault"`
}

type filterConditionOut struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type filterActionOut struct {
	Type  string  `json:"type"`
	Value *string `json:"value"`
}

type filterRuleOut struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Enabled    bool                 `json:"enabled"`
	Conditions []filterConditionOut `json:"conditions"`
	MatchAll   bool                 `json:"matchAll"`
	Actions    []filterActionOut    `json:"actions"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

type blockedAddressOut struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type keyboardShortcutOut struct {
	ID        string   `json:"id"`
	Action    string   `json:"action"`
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
	Enabled   bool     `json:"enabled"`
}

type settingsOut struct {
	Appearance        appearanceOut         `json:"appearance"`
	Notifications     notificationsOut      `json:"notifications"`
	InboxBehavior     inboxBehaviorOut      `json:"inboxBehavior"`
	Language          languageOut           `json:"language"`
	Signatures        []signatureOut        `json:"signatures"`
	VacationResponder vacationResponderOut  `json:"vacationResponder"`
	KeyboardShortcuts []keyboardShortcutOut `json:"keyboardShortcuts"`
	Filters           []filterRuleOut       `json:"filters"`
	BlockedAddresses  []blockedAddressOut   `json:"blockedAddresses"`
}

// decodeSection overlays a stored section document onto defaults already
// present in v. Malformed or empty documents leave the defaults alone.
func decodeSection(raw json.RawMessage, v any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, v)
}

func settingsToWire(b *services.SettingsBundle) settingsOut {
	out := settingsOut{
		Appearance: appearanceOut{Theme: "light", Density: "default", FontSize: "medium"},
		Notifications: notificationsOut{
			EmailNotifications: true,
			SoundEnabled:       true,
			NotifyOnNewEmail:   true,
			NotifyOnMention:    true,
		},
		InboxBehavior: inboxBehaviorOut{
			DefaultReplyBehavior: "reply",
			SendBehavior:         "immediately",
			ConversationView:     true,
			ReadingPanePosition:  "right",
			AutoAdvance:          "next",
		},
		Language:          languageOut{Language: "en", Timezone: "UTC", DateFormat: "MM/DD/YYYY", TimeFormat: "12h"},
		VacationResponder: vacationResponderOut{SendToContacts: true},
		Signatures:        []signatureOut{},
		KeyboardShortcuts: []keyboardShortcutOut{},
		Filters:           []filterRuleOut{},
		BlockedAddresses:  []blockedAddressOut{},
	}

	decodeSection(b.Settings.Appearance, &out.Appearance)
	decodeSection(b.Settings.Notifications, &out.Notifications)
	decodeSection(b.Settings.InboxBehavior, &out.InboxBehavior)
	decodeSection(b.Settings.Language, &out.Language)
	decodeSection(b.Settings.VacationResponder, &out.VacationResponder)

	for _, sig := range b.Signatures {
		out.Signatures = append(out.Signatures, signatureOut{
			ID:        sig.ID,
			Name:      sig.Name,
			Content:   sig.Content,
			IsDefault: sig.IsDefault,
		})
	}

	for _, f := range b.Filters {
		rule := filterRuleOut{
			ID:         f.ID,
			Name:       f.Name,
			Enabled:    f.Enabled,
			MatchAll:   f.MatchAll,
			Conditions: []filterConditionOut{},
			Actions:    []filterActionOut{},
			CreatedAt:  f.CreatedAt,
			UpdatedAt:  f.UpdatedAt,
		}
		decodeSection(f.Conditions, &rule.Conditions)
		decodeSection(f.Actions, &rule.Actions)
		out.Filters = append(out.Filters, rule)
	}

	for _, blocked := range b.Blocked {
		out.BlockedAddresses = append(out.BlockedAddresses, blockedAddressOut{
			ID:        blocked.ID,
			Email:     blocked.Email,
			CreatedAt: blocked.CreatedAt,
		})
	}

	for _, sc := range b.Shortcuts {
		mods := []string{}
		decodeSection(sc.Modifiers, &mods)
		out.KeyboardShortcuts = append(out.KeyboardShortcuts, keyboardShortcutOut{
			ID:        sc.ID,
			Action:    sc.Action,
			Key:       sc.Key,
			Modifiers: mods,
			Enabled:   sc.Enabled,
		})
	}

	return out
}
