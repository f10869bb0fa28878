package market

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/shelfline/shelfline/internal/config"
	"github.com/shelfline/shelfline/internal/core"
)

// TokenProvider is the provider key under which marketplace credentials are
// stored.
const TokenProvider = "ebay"

// loginTimeout bounds how long the local callback listener waits for the
// user to complete the browser authorization.
const loginTimeout = 2 * time.Minute

// TokenStore persists OAuth credential sets.
type TokenStore interface {
	GetOAuthToken(ctx context.Context, provider string) (*core.OAuthToken, error)
	PutOAuthToken(ctx context.Context, token *core.OAuthToken) error
	DeleteOAuthToken(ctx context.Context, provider string) error
}

// OAuth implements the authorization-code grant against the marketplace
// identity service, persisting tokens through a TokenStore. It satisfies the
// Authenticator interface consumed by Client.
type OAuth struct {
	cfg        config.MarketConfig
	store      TokenStore
	httpClient *http.Client
	logger     *logging.Logger
	clock      func() time.Time
}

// NewOAuth builds an authenticator from configuration and a token store.
func NewOAuth(cfg config.MarketConfig, store TokenStore, logger *logging.Logger) *OAuth {
	return &OAuth{
		cfg:        cfg,
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		clock:      time.Now,
	}
}

// tokenResponse is the identity service's token grant response.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	ErrorDescription string `json:"error_description"`
}

// AuthorizationURL builds the browser URL that starts the consent flow.
func (o *OAuth) AuthorizationURL() string {
	params := url.Values{}
	params.Set("client_id", o.cfg.ClientID)
	params.Set("redirect_uri", o.cfg.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(o.cfg.Scopes, " "))
	return o.cfg.AuthURL + "?" + params.Encode()
}

// Login runs the full authorization-code flow: it starts a loopback HTTP
// listener on the redirect URI port, waits for the marketplace to redirect
// the user's browser back with a code, then exchanges the code for tokens.
// The caller is responsible for presenting AuthorizationURL to the user.
func (o *OAuth) Login(ctx context.Context) error {
	if strings.TrimSpace(o.cfg.ClientID) == "" || strings.TrimSpace(o.cfg.ClientSecret) == "" {
		return &AuthError{Message: "marketplace credentials not configured, set market.client_id and market.client_secret"}
	}

	code, err := o.waitForCallback(ctx)
	if err != nil {
		return err
	}

	return o.exchangeCode(ctx, code)
}

// AccessToken returns a currently valid token, refreshing a recently expired
// one when a refresh token is on hand. An empty result with nil error never
// occurs; absence is reported as an AuthError.
func (o *OAuth) AccessToken(ctx context.Context) (string, error) {
	token, err := o.store.GetOAuthToken(ctx, TokenProvider)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if token == nil {
		return "", &AuthError{Message: "not authenticated, login required"}
	}

	if token.Expired(o.clock()) {
		if err := o.Refresh(ctx); err != nil {
			return "", err
		}
		token, err = o.store.GetOAuthToken(ctx, TokenProvider)
		if err != nil {
			return "", fmt.Errorf("load token: %w", err)
		}
		if token == nil {
			return "", &AuthError{Message: "token disappeared during refresh"}
		}
	}

	return token.AccessToken, nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (o *OAuth) Refresh(ctx context.Context) error {
	token, err := o.store.GetOAuthToken(ctx, TokenProvider)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token == nil || strings.TrimSpace(token.RefreshToken) == "" {
		return &AuthError{Message: "no refresh token available, login required"}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", token.RefreshToken)

	grant, err := o.tokenGrant(ctx, form)
	if err != nil {
		return err
	}

	// Identity services may omit the refresh token on renewal; keep the old one.
	if strings.TrimSpace(grant.RefreshToken) == "" {
		grant.RefreshToken = token.RefreshToken
	}

	o.info("access token refreshed")
	return o.storeGrant(ctx, grant)
}

// Authenticated reports whether a usable credential is on hand.
func (o *OAuth) Authenticated(ctx context.Context) bool {
	token, err := o.AccessToken(ctx)
	return err == nil && token != ""
}

// Logout deletes stored credentials.
func (o *OAuth) Logout(ctx context.Context) error {
	return o.store.DeleteOAuthToken(ctx, TokenProvider)
}

func (o *OAuth) exchangeCode(ctx context.Context, code string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", o.cfg.RedirectURI)

	grant, err := o.tokenGrant(ctx, form)
	if err != nil {
		return err
	}

	o.info("marketplace authentication succeeded")
	return o.storeGrant(ctx, grant)
}

// tokenGrant posts a form grant to the token endpoint with Basic client
// authentication.
func (o *OAuth) tokenGrant(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(o.cfg.ClientID + ":" + o.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: "oauth/token", Err: err}
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	var grant tokenResponse
	if err := json.Unmarshal(body, &grant); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &AuthError{Message: fmt.Sprintf("token grant failed (%d)", resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := grant.ErrorDescription
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, &AuthError{Message: "token grant failed: " + msg}
	}

	if strings.TrimSpace(grant.AccessToken) == "" {
		return nil, &AuthError{Message: "token grant returned no access token"}
	}

	return &grant, nil
}

func (o *OAuth) storeGrant(ctx context.Context, grant *tokenResponse) error {
	now := o.clock()
	token := &core.OAuthToken{
		Provider:     TokenProvider,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(grant.ExpiresIn) * time.Second),
		UpdatedAt:    now,
	}

	if err := o.store.PutOAuthToken(ctx, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// waitForCallback serves the loopback redirect URI until the consent flow
// delivers an authorization code, the flow reports an error, or the timeout
// elapses.
func (o *OAuth) waitForCallback(ctx context.Context) (string, error) {
	redirect, err := url.Parse(o.cfg.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("invalid redirect uri: %w", err)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return "", fmt.Errorf("start callback listener: %w", err)
	}

	type callbackResult struct {
		code string
		err  error
	}
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		code := query.Get("code")
		authErr := query.Get("error")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if code != "" {
			_, _ = w.Write([]byte(callbackSuccessPage))
			select {
			case results <- callbackResult{code: code}:
			default:
			}
			return
		}

		_, _ = w.Write([]byte(callbackFailurePage))
		if authErr == "" {
			authErr = "no authorization code received"
		}
		select {
		case results <- callbackResult{err: &AuthError{Message: "authorization failed: " + authErr}}:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: fmt.Errorf("callback server: %w", err)}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	select {
	case result := <-results:
		return result.code, result.err
	case <-time.After(loginTimeout):
		return "", &AuthError{Message: "authorization timed out, no callback received"}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (o *OAuth) info(msg string, fields ...zap.Field) {
	if o.logger != nil {
		o.logger.Info(msg, fields...)
	}
}

const callbackSuccessPage = `<html>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>Authorization successful</h1>
<p>You can close this window and return to Shelfline.</p>
</body>
</html>`

const callbackFailurePage = `<html>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>Authorization failed</h1>
<p>Please try again or check your marketplace credentials.</p>
</body>
</html>`
