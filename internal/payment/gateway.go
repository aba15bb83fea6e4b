package payment

import "context"

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusPending   Status = "pending"
)

// RedirectPayload is whatever the customer needs to complete payment with the
// external provider.
type RedirectPayload struct {
	Provider  string `json:"provider"`
	URL       string `json:"url"`
	Reference string `json:"reference"`
}

// CallbackResult is the provider's verdict delivered back to us, keyed by the
// reference we handed out at initiation.
type CallbackResult struct {
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents"`
	Status      Status `json:"status"`
}

// Gateway is the one outbound call the coordinator makes: start a payment for
// the advance amount under the given reference.
type Gateway interface {
	Initiate(ctx context.Context, amountCents int64, reference string) (*RedirectPayload, error)
}
