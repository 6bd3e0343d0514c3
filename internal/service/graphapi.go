package service

import (
	"context"

	"github.com/openclaw/waba-signup-go/internal/graph"
)

// GraphAPI is the surface of the Meta Graph API that the signup services
// consume. *graph.Client satisfies it; tests substitute mocks.
type GraphAPI interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	Identity(ctx context.Context, token string) (*graph.User, error)
	Businesses(ctx context.Context, token string) ([]graph.Business, error)
	OwnedWabas(ctx context.Context, token string) ([]graph.Waba, error)
	GrantedWabaIDs(ctx context.Context, token string) ([]string, error)
	Waba(ctx context.Context, token, wabaID string) (*graph.Waba, error)
	PhoneNumbers(ctx context.Context, token, wabaID string) ([]graph.PhoneNumber, error)
	OwningBusiness(ctx context.Context, token, wabaID string) (*graph.Business, error)
}

var _ GraphAPI = (*graph.Client)(nil)
