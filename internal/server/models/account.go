package models

import "time"

// Account colors accepted on the wire.
const (
	AccountColorBlue   = "blue"
	AccountColorGreen  = "green"
	AccountColorPurple = "purple"
	AccountColorOrange = "orange"
	AccountColorPink   = "pink"
	AccountColorTeal   = "teal"
	AccountColorRed    = "red"
	AccountColorIndigo = "indigo"
)

// Account providers.
const (
	ProviderGmail   = "gmail"
	ProviderOutlook = "outlook"
	ProviderCustom  = "custom"
)

// Account is a connected email account owned by a user. At most one
// account per user carries IsDefault=true.
type Account struct {
	ID                 string
	UserID             string
	Email              string
	Name               string
	Color              string
	DisplayName        string
	Signature          string
	DefaultSignatureID string
	Avatar             string
	IsDefault          bool
	Provider           string
	LastSyncAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
