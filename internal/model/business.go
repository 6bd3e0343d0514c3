package model

// BusinessEntity is a Meta Business Manager account visible to a user token.
type BusinessEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Waba is a WhatsApp Business Account. OwnerBusinessID is populated when the
// listing endpoint happened to include ownership metadata; it is a hint, not
// a guarantee (see Discoverer attribution).
type Waba struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TimezoneID        string `json:"timezoneId,omitempty"`
	TemplateNamespace string `json:"templateNamespace,omitempty"`
	OwnerBusinessID   string `json:"-"`
}

// PhoneNumber is a Cloud API phone number registered under a WABA.
type PhoneNumber struct {
	ID            string `json:"id"`
	DisplayNumber string `json:"displayNumber"`
}

// WabaAccount pairs a WABA with its usable phone numbers. A WABA only appears
// here with at least one phone number.
type WabaAccount struct {
	Waba         Waba          `json:"waba"`
	PhoneNumbers []PhoneNumber `json:"phoneNumbers"`
}

// BusinessAssociation groups every discovered WABA under its owning business.
// A given business id appears in a discovery result at most once.
type BusinessAssociation struct {
	Business BusinessEntity `json:"business"`
	Wabas    []WabaAccount  `json:"wabas"`
}

// UserIdentity is the Graph identity of the token holder.
type UserIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Discovery warning codes.
const (
	WarnAttributionGuessed = "attribution_guessed"
)

// DiscoveryResult is the output of WABA discovery for one access token.
// Warnings carries non-fatal conditions such as a best-effort business
// attribution so callers can log or surface them.
type DiscoveryResult struct {
	User         UserIdentity          `json:"user"`
	Associations []BusinessAssociation `json:"businessAccounts"`
	Warnings     []string              `json:"warnings,omitempty"`
}
