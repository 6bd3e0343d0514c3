package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/openclaw/waba-signup-go/internal/errors"
	"github.com/openclaw/waba-signup-go/internal/graph"
	"github.com/openclaw/waba-signup-go/internal/model"
)

// wabaSource is one strategy for enumerating the WABAs reachable from a user
// token. Sources are tried in order; the first one that yields a non-empty
// list wins and later sources are not consulted.
type wabaSource interface {
	name() string
	fetch(ctx context.Context, token string) ([]graph.Waba, error)
}

// nestedFieldSource reads the whatsapp_business_accounts field expansion on
// the user node. It is the cheapest and most complete path when the app has
// the right permissions.
type nestedFieldSource struct {
	api GraphAPI
}

func (nestedFieldSource) name() string { return "nested_field_expansion" }

func (s nestedFieldSource) fetch(ctx context.Context, token string) ([]graph.Waba, error) {
	return s.api.OwnedWabas(ctx, token)
}

// grantedScopeSource introspects the token's granular scopes and fetches each
// granted WABA id individually. Slower, but reaches WABAs the nested field
// omits (shared or client WABAs granted during embedded signup).
type grantedScopeSource struct {
	api GraphAPI
}

func (grantedScopeSource) name() string { return "granted_scope_introspection" }

func (s grantedScopeSource) fetch(ctx context.Context, token string) ([]graph.Waba, error) {
	ids, err := s.api.GrantedWabaIDs(ctx, token)
	if err != nil {
		return nil, err
	}

	wabas := make([]graph.Waba, 0, len(ids))
	for _, id := range ids {
		waba, err := s.api.Waba(ctx, token, id)
		if err != nil {
			// One unreadable WABA must not sink the whole source.
			log.Warn().Err(err).Str("waba_id", id).Msg("failed to fetch granted WABA, skipping")
			continue
		}
		wabas = append(wabas, *waba)
	}
	return wabas, nil
}

// Discoverer resolves the business / WABA / phone number associations behind
// a freshly exchanged user access token.
type Discoverer struct {
	api     GraphAPI
	sources []wabaSource
}

// NewDiscoverer creates a discoverer with the default source ordering.
func NewDiscoverer(api GraphAPI) *Discoverer {
	return &Discoverer{
		api: api,
		sources: []wabaSource{
			nestedFieldSource{api: api},
			grantedScopeSource{api: api},
		},
	}
}

// candidate is a WABA that survived phone-number filtering, waiting for
// business attribution.
type candidate struct {
	waba    graph.Waba
	numbers []graph.PhoneNumber
}

// Discover walks the token's reachable graph. Identity and business
// enumeration failures are fatal; an empty business list is NO_BUSINESS_FOUND
// and an empty final association list is NO_USABLE_WABA, which are distinct
// conditions with distinct remediation (grant access vs. register a number).
func (d *Discoverer) Discover(ctx context.Context, token string) (*model.DiscoveryResult, error) {
	user, err := d.api.Identity(ctx, token)
	if err != nil {
		return nil, apperrors.External("Meta Graph API", err)
	}

	businesses, err := d.api.Businesses(ctx, token)
	if err != nil {
		return nil, apperrors.External("Meta Graph API", err)
	}
	if len(businesses) == 0 {
		return nil, apperrors.NoBusinessFound()
	}

	wabas := d.collectWabas(ctx, token)
	candidates := d.filterUsable(ctx, token, wabas)

	result := &model.DiscoveryResult{
		User: model.UserIdentity{ID: user.ID, Name: user.Name, Email: user.Email},
	}
	d.attribute(ctx, token, businesses, candidates, result)

	if len(result.Associations) == 0 {
		return nil, apperrors.NoUsableWaba()
	}

	log.Info().
		Str("user_id", user.ID).
		Int("businesses", len(result.Associations)).
		Int("candidates", len(candidates)).
		Msg("WABA discovery complete")
	return result, nil
}

// collectWabas tries each source in order and keeps the first non-empty
// result. A source error is non-fatal: the next source still runs.
func (d *Discoverer) collectWabas(ctx context.Context, token string) []graph.Waba {
	for _, src := range d.sources {
		wabas, err := src.fetch(ctx, token)
		if err != nil {
			log.Warn().Err(err).Str("source", src.name()).Msg("WABA source failed, trying next")
			continue
		}
		if len(wabas) == 0 {
			log.Debug().Str("source", src.name()).Msg("WABA source returned nothing, trying next")
			continue
		}
		log.Debug().Str("source", src.name()).Int("count", len(wabas)).Msg("WABA source succeeded")
		return dedupeWabas(wabas)
	}
	return nil
}

func dedupeWabas(wabas []graph.Waba) []graph.Waba {
	seen := make(map[string]bool, len(wabas))
	out := wabas[:0]
	for _, w := range wabas {
		if seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		out = append(out, w)
	}
	return out
}

// filterUsable drops WABAs without a registered phone number. A phone-number
// lookup failure counts as zero numbers for that WABA.
func (d *Discoverer) filterUsable(ctx context.Context, token string, wabas []graph.Waba) []candidate {
	candidates := make([]candidate, 0, len(wabas))
	for _, waba := range wabas {
		numbers, err := d.api.PhoneNumbers(ctx, token, waba.ID)
		if err != nil {
			log.Warn().Err(err).Str("waba_id", waba.ID).Msg("phone number lookup failed, skipping WABA")
			continue
		}
		if len(numbers) == 0 {
			log.Debug().Str("waba_id", waba.ID).Msg("WABA has no phone numbers, skipping")
			continue
		}
		candidates = append(candidates, candidate{waba: waba, numbers: numbers})
	}
	return candidates
}

// attribute assigns each candidate WABA to a business and groups the results.
// The chain is: dedicated ownership lookup, then ownership metadata carried
// from the listing, then the user's first enumerated business as a flagged
// last resort. Association order follows business enumeration order, with
// ownership-only businesses appended after.
func (d *Discoverer) attribute(ctx context.Context, token string, businesses []graph.Business, candidates []candidate, result *model.DiscoveryResult) {
	order := make([]string, 0, len(businesses))
	byID := make(map[string]graph.Business, len(businesses))
	for _, b := range businesses {
		order = append(order, b.ID)
		byID[b.ID] = b
	}

	assocs := make(map[string]*model.BusinessAssociation)
	guessed := false

	for _, c := range candidates {
		owner := d.resolveOwner(ctx, token, c.waba, byID)
		if owner == nil {
			first := businesses[0]
			owner = &first
			guessed = true
			log.Warn().
				Str("waba_id", c.waba.ID).
				Str("business_id", first.ID).
				Msg("WABA ownership unknown, attributing to first business")
		}
		if _, known := byID[owner.ID]; !known {
			byID[owner.ID] = *owner
			order = append(order, owner.ID)
		}

		assoc := assocs[owner.ID]
		if assoc == nil {
			assoc = &model.BusinessAssociation{
				Business: model.BusinessEntity{ID: owner.ID, Name: owner.Name},
			}
			assocs[owner.ID] = assoc
		}
		assoc.Wabas = append(assoc.Wabas, model.WabaAccount{
			Waba:         toModelWaba(c.waba, owner.ID),
			PhoneNumbers: toModelNumbers(c.numbers),
		})
	}

	for _, id := range order {
		if assoc, ok := assocs[id]; ok {
			result.Associations = append(result.Associations, *assoc)
		}
	}
	if guessed {
		result.Warnings = append(result.Warnings, model.WarnAttributionGuessed)
	}
}

// resolveOwner finds the business a WABA belongs to, or nil when neither the
// ownership endpoint nor listing metadata can say.
func (d *Discoverer) resolveOwner(ctx context.Context, token string, waba graph.Waba, known map[string]graph.Business) *graph.Business {
	owner, err := d.api.OwningBusiness(ctx, token, waba.ID)
	if err != nil {
		log.Debug().Err(err).Str("waba_id", waba.ID).Msg("ownership lookup failed")
	}
	if owner != nil && owner.ID != "" {
		return owner
	}

	if info := waba.OwnerBusinessInfo; info != nil && info.ID != "" {
		if b, ok := known[info.ID]; ok {
			return &b
		}
		return info
	}
	return nil
}

func toModelWaba(w graph.Waba, ownerID string) model.Waba {
	return model.Waba{
		ID:                w.ID,
		Name:              w.Name,
		TimezoneID:        w.TimezoneID,
		TemplateNamespace: w.MessageTemplateNamespace,
		OwnerBusinessID:   ownerID,
	}
}

func toModelNumbers(numbers []graph.PhoneNumber) []model.PhoneNumber {
	out := make([]model.PhoneNumber, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, model.PhoneNumber{ID: n.ID, DisplayNumber: n.DisplayPhoneNumber})
	}
	return out
}
