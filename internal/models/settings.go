package models

// SettingsSection names one of the site settings documents.
type SettingsSection string

const (
	SectionGeneral    SettingsSection = "general"
	SectionAppearance SettingsSection = "appearance"
	SectionContact    SettingsSection = "contact"
)

// Valid reports whether s is a known section.
func (s SettingsSection) Valid() bool {
	switch s {
	case SectionGeneral, SectionAppearance, SectionContact:
		return true
	}
	return false
}

// Label is the wording used in "<Label> updated successfully".
func (s SettingsSection) Label() string {
	switch s {
	case SectionGeneral:
		return "General settings"
	case SectionAppearance:
		return "Appearance settings"
	case SectionContact:
		return "Contact info"
	}
	return "Settings"
}

// DefaultSettings returns the values shown until the API answers, and kept
// for any section the API fails to return.
func DefaultSettings() map[SettingsSection]Resource {
	return map[SettingsSection]Resource{
		SectionAppearance: {
			"siteName":        "Classic Carrry",
			"brandEmoji":      "🛍️",
			"tagline":         "Premium Lifestyle Products",
			"showNewsletter":  true,
			"showSocialMedia": true,
		},
		SectionGeneral: {
			"currency":              "PKR",
			"currencySymbol":        "Rs",
			"shippingFee":           float64(200),
			"freeShippingThreshold": float64(5000),
			"taxRate":               float64(0),
			"orderPrefix":           "CC",
			"enableCOD":             true,
			"enableOnlinePayment":   false,
		},
		SectionContact: {
			"email":     "",
			"phone":     "",
			"whatsapp":  "",
			"address":   "",
			"tiktok":    "",
			"instagram": "",
		},
	}
}

// ContactStats are the message counters shown above the contacts list.
type ContactStats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Read     int `json:"read"`
	Replied  int `json:"replied"`
	Archived int `json:"archived"`
}
