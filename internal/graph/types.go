package graph

import "fmt"

// Error is the Graph API error envelope payload. The Message is the upstream
// text shown to operators and, for auth failures, surfaced to the frontend.
type Error struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode,omitempty"`
	FBTraceID    string `json:"fbtrace_id,omitempty"`
	HTTPStatus   int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("graph: %s (type=%s, code=%d)", e.Message, e.Type, e.Code)
	}
	return fmt.Sprintf("graph: %s (code=%d)", e.Message, e.Code)
}

type errorEnvelope struct {
	Error *Error `json:"error"`
}

// User is the identity of the token holder (me?fields=id,name,email).
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Business is a Business Manager node.
type Business struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Waba is a WhatsApp Business Account node. OwnerBusinessInfo is only present
// when the owner_business_info field was requested and the token may read it.
type Waba struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	TimezoneID               string    `json:"timezone_id,omitempty"`
	MessageTemplateNamespace string    `json:"message_template_namespace,omitempty"`
	OwnerBusinessInfo        *Business `json:"owner_business_info,omitempty"`
}

// PhoneNumber is a Cloud API phone number edge entry.
type PhoneNumber struct {
	ID                 string `json:"id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	VerifiedName       string `json:"verified_name,omitempty"`
}

// page is the standard Graph list envelope.
type page[T any] struct {
	Data   []T `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// GranularScope is one entry within debug_token's granular_scopes, listing
// the object ids a permission was granted for.
type GranularScope struct {
	Scope     string   `json:"scope"`
	TargetIDs []string `json:"target_ids"`
}

// TokenDebug is the debug_token introspection payload.
type TokenDebug struct {
	AppID          string          `json:"app_id"`
	IsValid        bool            `json:"is_valid"`
	Scopes         []string        `json:"scopes"`
	GranularScopes []GranularScope `json:"granular_scopes"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ScopeWabaManagement is the permission whose granular targets reference
// WABA ids; used as the discovery fallback source.
const ScopeWabaManagement = "whatsapp_business_management"
