// Package payment wraps Stripe Checkout behind the engine's gateway port.
// Sessions are always scoped to the deposit amount handed in by the caller;
// this package never sees the full charter total.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"

	models "github.com/veligo/charterdesk/internal"
)

var (
	ErrNoRedirectURL  = errors.New("checkout session carries no redirect url")
	ErrSessionMissing = errors.New("checkout session not found")
)

type Client struct {
	api        *stripeclient.API
	apiKey     string
	currency   string
	successURL string
	cancelURL  string
	timeout    time.Duration
}

type Option func(*Client)

func WithCurrency(currency string) Option {
	return func(c *Client) {
		c.currency = currency
	}
}

func WithRedirectURLs(successURL, cancelURL string) Option {
	return func(c *Client) {
		c.successURL = successURL
		c.cancelURL = cancelURL
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithBackends(backends *stripe.Backends) Option {
	return func(c *Client) {
		c.api.Init(c.apiKey, backends)
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	api := &stripeclient.API{}
	api.Init(apiKey, nil)

	client := &Client{
		api:      api,
		apiKey:   apiKey,
		currency: "eur",
		timeout:  15 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CreateCheckoutSession opens a hosted checkout for the given amount of
// minor currency units. The call fails closed on timeout: no session id is
// returned unless Stripe acknowledged the session.
func (c *Client) CreateCheckoutSession(ctx context.Context, amount int64, label string, metadata map[string]string) (*models.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.successURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(c.currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(label),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	if session.URL == "" {
		return nil, ErrNoRedirectURL
	}

	return &models.CheckoutSession{
		ID:            session.ID,
		RedirectURL:   session.URL,
		PaymentStatus: string(session.PaymentStatus),
	}, nil
}

// RetrieveSession re-queries a session, used by the confirmation paths to
// decide whether the deposit actually settled.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return nil, ErrSessionMissing
		}
		return nil, fmt.Errorf("retrieving checkout session: %w", err)
	}

	return &models.CheckoutSession{
		ID:            session.ID,
		RedirectURL:   session.URL,
		PaymentStatus: string(session.PaymentStatus),
	}, nil
}
