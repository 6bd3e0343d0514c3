package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	apperrors "github.com/openclaw/waba-signup-go/internal/errors"
	"github.com/openclaw/waba-signup-go/internal/graph"
	"github.com/openclaw/waba-signup-go/internal/util"
)

// TokenExchanger swaps an OAuth authorization code for a user access token.
type TokenExchanger struct {
	api GraphAPI
}

// NewTokenExchanger creates a new token exchanger
func NewTokenExchanger(api GraphAPI) *TokenExchanger {
	return &TokenExchanger{api: api}
}

// Exchange redeems the one-time authorization code. Upstream rejections
// (expired code, redirect URI mismatch, and so on) surface the Graph API's
// own message verbatim so the frontend can show the real reason.
func (e *TokenExchanger) Exchange(ctx context.Context, code string) (string, error) {
	token, err := e.api.ExchangeCode(ctx, code)
	if err != nil {
		var graphErr *graph.Error
		if errors.As(err, &graphErr) {
			log.Warn().
				Int("upstream_code", graphErr.Code).
				Str("upstream_message", graphErr.Message).
				Msg("authorization code exchange rejected")
			return "", apperrors.UpstreamAuth(graphErr.Message, err)
		}
		return "", apperrors.External("Meta Graph API", err)
	}

	log.Debug().Str("token", util.MaskToken(token)).Msg("exchanged authorization code")
	return token, nil
}
