package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// DefaultBaseURL is the Twilio REST API root.
const DefaultBaseURL = "https://api.twilio.com"

var _ Client = (*TwilioClient)(nil)

// TwilioClient sends WhatsApp messages through the Twilio Messages API.
type TwilioClient struct {
	// baseURL redirects SDK requests to another host. Nil keeps the SDK default.
	baseURL   *url.URL
	creds     CredentialsSource
	transport http.RoundTripper
}

// NewTwilioClient creates a client against baseURL (DefaultBaseURL when empty).
func NewTwilioClient(baseURL string, creds CredentialsSource) *TwilioClient {
	c := &TwilioClient{
		creds:     creds,
		transport: http.DefaultTransport,
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL != "" && baseURL != DefaultBaseURL {
		if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
			c.baseURL = u
		}
	}
	return c
}

// withTimeout wraps the context with a timeout if it doesn't already have one.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// rest builds an SDK client for one call. The SDK has no context parameter,
// so ctx is bound to every request through the transport.
func (c *TwilioClient) rest(ctx context.Context, creds Credentials) *twilio.RestClient {
	user, pass := creds.basicAuth()
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   user,
		Password:   pass,
		AccountSid: creds.AccountSID,
	})
	if hc, ok := rc.Client.(*client.Client); ok {
		hc.HTTPClient = &http.Client{
			Transport: &boundTransport{ctx: ctx, base: c.baseURL, next: c.transport},
		}
	}
	return rc
}

// Send implements Client.Send by creating a message resource.
func (c *TwilioClient) Send(ctx context.Context, to, body string) (string, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetPathAccountSid(creds.AccountSID)
	params.SetTo(Address(to))
	params.SetFrom(Address(creds.PhoneNumber))
	params.SetBody(body)

	msg, err := c.rest(ctx, creds).Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("send message: %w", translateError(ctx, err))
	}
	if msg == nil || msg.Sid == nil || *msg.Sid == "" {
		return "", errors.New("provider response missing sid")
	}

	return *msg.Sid, nil
}

// Health implements Client.Health by listing a single incoming number.
func (c *TwilioClient) Health(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return err
	}

	params := &openapi.ListIncomingPhoneNumberParams{}
	params.SetPathAccountSid(creds.AccountSID)
	params.SetPageSize(1)
	params.SetLimit(1)

	if _, err := c.rest(ctx, creds).Api.ListIncomingPhoneNumber(params); err != nil {
		return fmt.Errorf("health: %w", translateError(ctx, err))
	}
	return nil
}

// PhoneNumber implements Client.PhoneNumber.
func (c *TwilioClient) PhoneNumber(ctx context.Context) (string, error) {
	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return "", err
	}
	return creds.PhoneNumber, nil
}

// translateError maps SDK errors onto APIError and surfaces ctx expiry.
func translateError(ctx context.Context, err error) error {
	var restErr *client.TwilioRestError
	if errors.As(err, &restErr) {
		return &APIError{
			StatusCode: restErr.Status,
			Code:       restErr.Code,
			Message:    restErr.Message,
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("request timeout or canceled: %w", ctxErr)
	}
	return fmt.Errorf("request failed: %w", err)
}

// boundTransport attaches ctx to outgoing requests and optionally rewrites
// their host.
type boundTransport struct {
	ctx  context.Context
	base *url.URL
	next http.RoundTripper
}

func (t *boundTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(t.ctx)
	if t.base != nil {
		out.URL.Scheme = t.base.Scheme
		out.URL.Host = t.base.Host
		out.Host = ""
	}
	return t.next.RoundTrip(out)
}
