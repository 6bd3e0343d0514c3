package model

import (
	"time"
)

// BusinessAccount is a linked merchant credential row. One row per
// (business_account_id, whatsapp_business_account_id); repeat signups update
// the row in place.
type BusinessAccount struct {
	ID                        string    `db:"id" json:"id"`
	BusinessAccountID         string    `db:"business_account_id" json:"businessAccountId"`
	WhatsappBusinessAccountID string    `db:"whatsapp_business_account_id" json:"whatsappBusinessAccountId"`
	PhoneNumberID             string    `db:"phone_number_id" json:"phoneNumberId"`
	DisplayPhoneNumber        string    `db:"display_phone_number" json:"displayPhoneNumber"`
	Name                      string    `db:"name" json:"name"`
	AccessToken               string    `db:"access_token" json:"-"`
	CreatedAt                 time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt                 time.Time `db:"updated_at" json:"updatedAt"`
}

type UpsertBusinessAccountParams struct {
	BusinessAccountID         string
	WhatsappBusinessAccountID string
	PhoneNumberID             string
	DisplayPhoneNumber        string
	Name                      string
	AccessToken               string
}
