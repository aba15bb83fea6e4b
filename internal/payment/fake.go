package payment

import (
	"context"
	"fmt"
)

// FakeGateway stands in for a real provider in dev environments: it hands
// back a local redirect and the caller drives the confirm callback manually.
type FakeGateway struct {
	BaseURL string
}

func NewFakeGateway(baseURL string) *FakeGateway {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &FakeGateway{BaseURL: baseURL}
}

func (g *FakeGateway) Initiate(_ context.Context, amountCents int64, reference string) (*RedirectPayload, error) {
	return &RedirectPayload{
		Provider:  "fake",
		URL:       fmt.Sprintf("%s/fake-checkout?reference=%s&amount_cents=%d", g.BaseURL, reference, amountCents),
		Reference: reference,
	}, nil
}
