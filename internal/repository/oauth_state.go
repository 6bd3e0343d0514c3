package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/openclaw/waba-signup-go/internal/model"
)

type OAuthStateRepository interface {
	FindByState(ctx context.Context, state string) (*model.OAuthState, error)
	Create(ctx context.Context, params model.CreateOAuthStateParams) (*model.OAuthState, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type oauthStateRepo struct {
	db *sqlx.DB
}

func NewOAuthStateRepository(db *sqlx.DB) OAuthStateRepository {
	return &oauthStateRepo{db: db}
}

func (r *oauthStateRepo) FindByState(ctx context.Context, state string) (*model.OAuthState, error) {
	var oauthState model.OAuthState
	err := r.db.GetContext(ctx, &oauthState, `
		SELECT * FROM oauth_states
		WHERE state = $1 AND expires_at > NOW()
	`, state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &oauthState, nil
}

func (r *oauthStateRepo) Create(ctx context.Context, params model.CreateOAuthStateParams) (*model.OAuthState, error) {
	var oauthState model.OAuthState
	err := r.db.GetContext(ctx, &oauthState, `
		INSERT INTO oauth_states (state, expires_at)
		VALUES ($1, $2)
		RETURNING *
	`, params.State, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &oauthState, nil
}

func (r *oauthStateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE id = $1`, id)
	return err
}

func (r *oauthStateRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
