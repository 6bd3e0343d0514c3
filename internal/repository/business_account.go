package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/openclaw/waba-signup-go/internal/model"
)

type BusinessAccountRepository interface {
	// Upsert inserts or refreshes the row keyed by
	// (business_account_id, whatsapp_business_account_id). On conflict the
	// credential fields and updated_at change; created_at is preserved.
	Upsert(ctx context.Context, params model.UpsertBusinessAccountParams) (*model.BusinessAccount, error)
	FindByKey(ctx context.Context, businessAccountID, wabaID string) (*model.BusinessAccount, error)
	FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*model.BusinessAccount, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.BusinessAccount, error)
	Count(ctx context.Context) (int, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) BusinessAccountRepository
}

type businessAccountRepo struct {
	db sqlxDB
}

// sqlxDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type sqlxDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func NewBusinessAccountRepository(db *sqlx.DB) BusinessAccountRepository {
	return &businessAccountRepo{db: db}
}

func (r *businessAccountRepo) WithTx(tx *sqlx.Tx) BusinessAccountRepository {
	return &businessAccountRepo{db: tx}
}

func (r *businessAccountRepo) Upsert(ctx context.Context, params model.UpsertBusinessAccountParams) (*model.BusinessAccount, error) {
	var account model.BusinessAccount
	err := r.db.GetContext(ctx, &account, `
		INSERT INTO business_accounts (
			business_account_id, whatsapp_business_account_id,
			phone_number_id, display_phone_number, name, access_token
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (business_account_id, whatsapp_business_account_id) DO UPDATE SET
			phone_number_id = EXCLUDED.phone_number_id,
			display_phone_number = EXCLUDED.display_phone_number,
			name = EXCLUDED.name,
			access_token = EXCLUDED.access_token,
			updated_at = NOW()
		RETURNING *
	`, params.BusinessAccountID, params.WhatsappBusinessAccountID,
		params.PhoneNumberID, params.DisplayPhoneNumber, params.Name, params.AccessToken)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *businessAccountRepo) FindByKey(ctx context.Context, businessAccountID, wabaID string) (*model.BusinessAccount, error) {
	var account model.BusinessAccount
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM business_accounts
		WHERE business_account_id = $1 AND whatsapp_business_account_id = $2
	`, businessAccountID, wabaID)
	return HandleNotFound(&account, err)
}

func (r *businessAccountRepo) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*model.BusinessAccount, error) {
	var account model.BusinessAccount
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM business_accounts
		WHERE phone_number_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, phoneNumberID)
	return HandleNotFound(&account, err)
}

func (r *businessAccountRepo) FindAll(ctx context.Context, limit, offset int) ([]model.BusinessAccount, error) {
	var accounts []model.BusinessAccount
	err := r.db.SelectContext(ctx, &accounts, `
		SELECT * FROM business_accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *businessAccountRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM business_accounts`)
	return count, err
}
