// Package api implements the form-encoded HTTP client for the remote
// portal service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	outlet "github.com/neoidea/outlet"
	"github.com/neoidea/outlet/core"
	"github.com/neoidea/outlet/internal/digest"
	"github.com/neoidea/outlet/ports"
)

// Endpoint names of the portal service, relative to the service base URL.
const (
	endpointAuth                 = "autenticaFaExterno"
	endpointVerifyAuth           = "verificaAutenticacaoExterno"
	endpointRecoverPassword      = "recuperarSenhaFaExterno"
	endpointQRChallenge          = "auth2Externo"
	endpointValidateQRChallenge  = "validarAuth2Externo"
	endpointAppChallenge         = "gerarDesafioAuth2Externo"
	endpointValidateAppChallenge = "validarDesafioAuth2Externo"
	endpointLayout               = "getLayoutExterno"
	endpointCarousel             = "getCarrosselExterno"
	endpointContact              = "getContatoExterno"
	endpointSendContact          = "enviarMensagemContatoExterno"
)

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one portal installation, identified by its mdi_id.
type Client struct {
	client httpClient
	base   url.URL
	mdiID  string
	lang   string
}

// Option configures a Client.
type Option func(*Client)

// WithLang sets the optional `lang` field sent on every request.
func WithLang(lang string) Option {
	return func(c *Client) { c.lang = lang }
}

// NewClient creates a portal API client. base is the service root, e.g.
// https://app.example.com/sistema/index.php?r=outlet/services
func NewClient(client httpClient, base url.URL, mdiID string, opts ...Option) *Client {
	c := &Client{
		client: client,
		base:   base,
		mdiID:  mdiID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ ports.AuthAPI    = (*Client)(nil)
	_ ports.ContentAPI = (*Client)(nil)
)

// Login exchanges credential digests for a session token.
func (c *Client) Login(ctx context.Context, emailDigest, passwordDigest string) (ports.LoginResult, error) {
	form := url.Values{}
	form.Set("metodo", digest.Method)
	form.Set("email", emailDigest)
	form.Set("senha", passwordDigest)
	form.Set("mdi_id", c.mdiID)

	env, err := c.post(ctx, endpointAuth, form, "")
	if err != nil {
		return ports.LoginResult{}, err
	}
	if err := env.Err(outlet.MsgLoginFailed); err != nil {
		return ports.LoginResult{}, err
	}

	var payload outlet.SessionPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return ports.LoginResult{}, fmt.Errorf("failed to decode session payload: %w", err)
		}
	}
	if payload.Token == "" {
		// A success flag without a token is not a usable session.
		return ports.LoginResult{}, &core.ServiceError{Message: env.Message(outlet.MsgLoginFailed)}
	}
	return ports.LoginResult{
		Token:    payload.Token,
		Identity: payload.Identity(),
	}, nil
}

// VerifySession asks whether the stored bearer token is still accepted.
func (c *Client) VerifySession(ctx context.Context, token string) (bool, error) {
	env, err := c.post(ctx, endpointVerifyAuth, url.Values{}, token)
	if err != nil {
		return false, err
	}
	return env.OK, nil
}

// RecoverPassword triggers the password-recovery email for the account.
func (c *Client) RecoverPassword(ctx context.Context, email string) error {
	form := url.Values{}
	form.Set("email", email)

	env, err := c.post(ctx, endpointRecoverPassword, form, "")
	if err != nil {
		return err
	}
	return env.Err(outlet.MsgRecoveryFailed)
}

// CreateQRChallenge mints a challenge bound to email.
func (c *Client) CreateQRChallenge(ctx context.Context, email string) (string, error) {
	form := url.Values{}
	form.Set("email", email)

	return c.createChallenge(ctx, endpointQRChallenge, form)
}

// ValidateQRChallenge reports whether the challenge has been approved by
// the companion app. A plain "not yet" is OK=false with a nil error.
func (c *Client) ValidateQRChallenge(ctx context.Context, challengeToken, deviceID string) (ports.ValidationResult, error) {
	form := url.Values{}
	form.Set("desafio", challengeToken)
	form.Set("numero_serie", deviceID)

	return c.validateChallenge(ctx, form, endpointValidateQRChallenge)
}

// CreateAppChallenge mints a challenge bound to this installation.
func (c *Client) CreateAppChallenge(ctx context.Context, deviceID string) (string, error) {
	form := url.Values{}
	form.Set("mdi", c.mdiID)
	form.Set("numero_serie", deviceID)

	return c.createChallenge(ctx, endpointAppChallenge, form)
}

// ValidateAppChallenge validates an app-push challenge. The service wants
// the email again here even though generation already bound the device.
func (c *Client) ValidateAppChallenge(ctx context.Context, challengeToken, email string) (ports.ValidationResult, error) {
	form := url.Values{}
	form.Set("desafio", challengeToken)
	form.Set("email", email)
	form.Set("mdi", c.mdiID)

	return c.validateChallenge(ctx, form, endpointValidateAppChallenge)
}

func (c *Client) createChallenge(ctx context.Context, endpoint string, form url.Values) (string, error) {
	env, err := c.post(ctx, endpoint, form, "")
	if err != nil {
		return "", err
	}
	if err := env.Err(outlet.MsgChallengeFailed); err != nil {
		return "", err
	}

	var payload outlet.ChallengePayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return "", fmt.Errorf("failed to decode challenge payload: %w", err)
		}
	}
	if payload.Challenge == "" {
		return "", outlet.ErrEmptyChallenge
	}
	return payload.Challenge, nil
}

func (c *Client) validateChallenge(ctx context.Context, form url.Values, endpoint string) (ports.ValidationResult, error) {
	env, err := c.post(ctx, endpoint, form, "")
	if err != nil {
		return ports.ValidationResult{}, err
	}
	if !env.OK {
		// A bare false is "not approved yet". A rejection that carries a
		// message is a real failure and must reach single-shot callers.
		if msg := env.Message(""); msg != "" {
			return ports.ValidationResult{}, &core.ServiceError{Message: msg}
		}
		return ports.ValidationResult{}, nil
	}

	res := ports.ValidationResult{OK: true}
	if len(env.Data) > 0 {
		var payload outlet.SessionPayload
		if err := json.Unmarshal(env.Data, &payload); err == nil {
			res.Token = payload.Token
			res.Identity = payload.Identity()
		}
	}
	return res, nil
}

// Layout fetches the portal theming payload.
func (c *Client) Layout(ctx context.Context) (core.Layout, error) {
	form := url.Values{}
	form.Set("mdi_id", c.mdiID)

	env, err := c.post(ctx, endpointLayout, form, "")
	if err != nil {
		return core.Layout{}, err
	}
	if err := env.Err("could not load layout"); err != nil {
		return core.Layout{}, err
	}

	var layout core.Layout
	if err := json.Unmarshal(env.Data, &layout); err != nil {
		return core.Layout{}, fmt.Errorf("failed to decode layout: %w", err)
	}
	return layout, nil
}

// Carousel fetches home-screen carousel items.
func (c *Client) Carousel(ctx context.Context, q core.CarouselQuery) ([]core.CarouselItem, error) {
	form := url.Values{}
	form.Set("mdi_id", c.mdiID)
	if q.Type != "" {
		form.Set("tipo", q.Type)
	}
	if q.ID != "" {
		form.Set("id", q.ID)
	}

	env, err := c.post(ctx, endpointCarousel, form, "")
	if err != nil {
		return nil, err
	}
	if err := env.Err("could not load carousel"); err != nil {
		return nil, err
	}

	var items []core.CarouselItem
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode carousel items: %w", err)
	}
	return items, nil
}

// ContactInfo fetches the portal contact card.
func (c *Client) ContactInfo(ctx context.Context) (core.Contact, error) {
	form := url.Values{}
	form.Set("mdi_id", c.mdiID)

	env, err := c.post(ctx, endpointContact, form, "")
	if err != nil {
		return core.Contact{}, err
	}
	if err := env.Err("could not load contact info"); err != nil {
		return core.Contact{}, err
	}

	var contact core.Contact
	if err := json.Unmarshal(env.Data, &contact); err != nil {
		return core.Contact{}, fmt.Errorf("failed to decode contact info: %w", err)
	}
	return contact, nil
}

// SendContactMessage submits the contact form.
func (c *Client) SendContactMessage(ctx context.Context, msg core.ContactMessage) error {
	form := url.Values{}
	form.Set("mdi_id", c.mdiID)
	form.Set("nome", msg.Name)
	form.Set("email", msg.Email)
	form.Set("mensagem", msg.Message)

	env, err := c.post(ctx, endpointSendContact, form, "")
	if err != nil {
		return err
	}
	return env.Err("could not send message")
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values, bearer string) (outlet.Envelope, error) {
	if c.lang != "" {
		form.Set("lang", c.lang)
	}

	// The service routes on the base string plus endpoint, so the endpoint
	// must land at the end of the base even when the base carries a query
	// (.../index.php?r=outlet/services/autenticaFaExterno). Path joining
	// would put it in the wrong place.
	reqURL := strings.TrimRight(c.base.String(), "/") + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return outlet.Envelope{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return outlet.Envelope{}, fmt.Errorf("%w: %v", outlet.ErrServiceUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outlet.Envelope{}, fmt.Errorf("%w: %v", outlet.ErrServiceUnavailable, err)
	}

	env, err := outlet.DecodeEnvelope(body)
	if err != nil {
		// The service answers 200 with an envelope even on rejection;
		// anything else is an outage, not a rejection.
		return outlet.Envelope{}, fmt.Errorf("%w: status %d", outlet.ErrServiceUnavailable, resp.StatusCode)
	}
	return env, nil
}
