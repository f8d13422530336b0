package lib

import (
	"context"
	"errors"
	"net/http"
	"ticketeira/src/monitoring"
	"ticketeira/src/types"
	"time"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient(apiKey string, timeout time.Duration) *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	sc := NewStripeClientWithConfig(apiKey, nil, timeout)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// NewStripeClientWithConfig builds a client that never retries on its own.
// A nil url targets the live API.
func NewStripeClientWithConfig(apiKey string, url *string, timeout time.Duration) *stripe.Client {
	backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		URL:               url,
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	})
	return stripe.NewClient(apiKey, stripe.WithBackends(backends))
}

// StripeGateway opens and reads hosted Checkout Sessions.
type StripeGateway struct {
	client *stripe.Client
}

func NewStripeGateway(c *stripe.Client) *StripeGateway {
	return &StripeGateway{client: c}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req *types.CheckoutSessionRequest) (*types.CheckoutSession, error) {
	defer monitoring.ObserveUpstream("stripe")()

	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		product := &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			product.Description = stripe.String(item.Description)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String("payment"),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.ClientReferenceID),
		LineItems:         lineItems,
		Metadata:          req.Metadata,
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	cs, err := g.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, classifyStripeError(err, "could not create checkout session")
	}
	return &types.CheckoutSession{ID: cs.ID, URL: cs.URL}, nil
}

func (g *StripeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*types.ProviderSession, error) {
	defer monitoring.ObserveUpstream("stripe")()

	cs, err := g.client.V1CheckoutSessions.Retrieve(ctx, sessionID, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		return nil, classifyStripeError(err, "could not retrieve checkout session")
	}
	session := &types.ProviderSession{
		ID:            cs.ID,
		PaymentStatus: string(cs.PaymentStatus),
		Metadata:      cs.Metadata,
		CustomerEmail: cs.CustomerEmail,
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
	}
	if session.CustomerEmail == "" && cs.CustomerDetails != nil {
		session.CustomerEmail = cs.CustomerDetails.Email
	}
	if cs.Customer != nil {
		session.CustomerID = cs.Customer.ID
	}
	if cs.PaymentIntent != nil {
		session.PaymentIntentID = cs.PaymentIntent.ID
	}
	return session, nil
}

func classifyStripeError(err error, message string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
		return types.Wrap(types.NotFound, err, "checkout session not found")
	}
	return types.Wrap(types.UpstreamFailure, err, "%s", message)
}
