package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openclaw/waba-signup-go/internal/config"
	apperrors "github.com/openclaw/waba-signup-go/internal/errors"
	"github.com/openclaw/waba-signup-go/internal/model"
	"github.com/openclaw/waba-signup-go/internal/repository"
	"github.com/openclaw/waba-signup-go/internal/util"
)

// oauthDialogBase is where Meta hosts the OAuth consent dialog. The Graph
// host serves everything else.
const oauthDialogBase = "https://www.facebook.com"

// SignupResult is a completed signup: the discovered associations plus a
// signed session token carrying them.
type SignupResult struct {
	User         model.UserIdentity          `json:"user"`
	Associations []model.BusinessAssociation `json:"businessAccounts"`
	Warnings     []string                    `json:"warnings,omitempty"`
	Token        string                      `json:"token"`
}

// SignupService orchestrates the embedded signup flow end to end: consent
// URL, state validation, code exchange, discovery, persistence, session
// token.
type SignupService struct {
	cfg         *config.Config
	exchanger   *TokenExchanger
	discoverer  *Discoverer
	issuer      *TokenIssuer
	accountRepo repository.BusinessAccountRepository
	stateRepo   repository.OAuthStateRepository
}

// NewSignupService creates a new signup service
func NewSignupService(
	cfg *config.Config,
	exchanger *TokenExchanger,
	discoverer *Discoverer,
	issuer *TokenIssuer,
	accountRepo repository.BusinessAccountRepository,
	stateRepo repository.OAuthStateRepository,
) *SignupService {
	return &SignupService{
		cfg:         cfg,
		exchanger:   exchanger,
		discoverer:  discoverer,
		issuer:      issuer,
		accountRepo: accountRepo,
		stateRepo:   stateRepo,
	}
}

// BeginAuth stores a fresh anti-forgery state and returns the consent dialog
// URL to redirect the merchant to.
func (s *SignupService) BeginAuth(ctx context.Context) (string, error) {
	state, err := util.GenerateStateToken()
	if err != nil {
		return "", apperrors.Internal("failed to generate state token")
	}

	if _, err := s.stateRepo.Create(ctx, model.CreateOAuthStateParams{
		State:     state,
		ExpiresAt: time.Now().Add(s.cfg.OAuthStateTTL()),
	}); err != nil {
		return "", apperrors.Database(err)
	}

	params := url.Values{}
	params.Set("client_id", s.cfg.MetaAppID)
	params.Set("redirect_uri", s.cfg.MetaRedirectURI)
	params.Set("state", state)
	params.Set("scope", config.OAuthScopes)
	params.Set("response_type", "code")

	return fmt.Sprintf("%s/%s/dialog/oauth?%s", oauthDialogBase, s.cfg.GraphAPIVersion, params.Encode()), nil
}

// ConsumeState validates and burns an anti-forgery state. Each state is
// single use: a replayed or expired state is rejected.
func (s *SignupService) ConsumeState(ctx context.Context, state string) error {
	if state == "" {
		return apperrors.MissingRequired("state")
	}

	stored, err := s.stateRepo.FindByState(ctx, state)
	if err != nil {
		return apperrors.Database(err)
	}
	if stored == nil {
		return apperrors.InvalidState()
	}

	if err := s.stateRepo.Delete(ctx, stored.ID); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// Signup runs the whole pipeline for an authorization code: exchange it,
// discover the reachable businesses and WABAs, persist one credential row per
// (business, WABA) pair, and issue the session token.
func (s *SignupService) Signup(ctx context.Context, code string) (*SignupResult, error) {
	token, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	discovery, err := s.discoverer.Discover(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, token, discovery); err != nil {
		return nil, err
	}

	session, err := s.issuer.Issue(discovery.User, discovery.Associations)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign session token")
		return nil, apperrors.Internal("failed to issue session token")
	}

	return &SignupResult{
		User:         discovery.User,
		Associations: discovery.Associations,
		Warnings:     discovery.Warnings,
		Token:        session,
	}, nil
}

// persist upserts one row per discovered (business, WABA) pair. The first
// phone number of each WABA becomes the default sending number.
func (s *SignupService) persist(ctx context.Context, accessToken string, d *model.DiscoveryResult) error {
	for _, assoc := range d.Associations {
		for _, wa := range assoc.Wabas {
			primary := wa.PhoneNumbers[0]
			account, err := s.accountRepo.Upsert(ctx, model.UpsertBusinessAccountParams{
				BusinessAccountID:         assoc.Business.ID,
				WhatsappBusinessAccountID: wa.Waba.ID,
				PhoneNumberID:             primary.ID,
				DisplayPhoneNumber:        primary.DisplayNumber,
				Name:                      assoc.Business.Name,
				AccessToken:               accessToken,
			})
			if err != nil {
				return apperrors.Database(err)
			}
			log.Info().
				Str("account_id", account.ID).
				Str("business_id", assoc.Business.ID).
				Str("waba_id", wa.Waba.ID).
				Str("phone_number_id", primary.ID).
				Msg("linked business account")
		}
	}
	return nil
}

// ListAccounts returns linked accounts and the total row count.
func (s *SignupService) ListAccounts(ctx context.Context, limit, offset int) ([]model.BusinessAccount, int, error) {
	accounts, err := s.accountRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	total, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return accounts, total, nil
}
