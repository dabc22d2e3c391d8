package transferform

import "strings"

// DefaultCountryCode pre-fills the phone prefix for a fresh session.
const DefaultCountryCode = "+30"

// Draft is the in-progress, unsubmitted form data. It lives for one form
// session and is owned exclusively by the Controller.
//
// Amount is the committed text the validator sees. LiveAmount mirrors
// continuous input (slider drag, keystrokes) at high frequency and is
// folded into Amount only on blur or gesture end, so validation does not
// churn mid-gesture.
type Draft struct {
	RecipientName string `json:"recipient_name"`
	CountryCode   string `json:"country_code"`
	LocalNumber   string `json:"local_number"`
	Amount        string `json:"amount"`
	LiveAmount    string `json:"live_amount"`
	Description   string `json:"description"`
}

// RecipientAccount composes the international phone number from the
// separately edited country code and local number.
func (d Draft) RecipientAccount() string {
	cc := strings.TrimSpace(d.CountryCode)
	local := strings.TrimSpace(d.LocalNumber)
	if cc == "" && local == "" {
		return ""
	}
	return cc + local
}

func emptyDraft() Draft {
	return Draft{CountryCode: DefaultCountryCode}
}
