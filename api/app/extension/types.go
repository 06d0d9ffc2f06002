package extension

import (
	"net/http"
	"time"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/go-chi/render"
)

// issueCodeRequest is posted by the primary web application
type issueCodeRequest struct {
	UserID      string `json:"user_id"      validate:"required,uuid"`
	CallbackURL string `json:"callback_url" validate:"required,max=2048"`
}

func (*issueCodeRequest) Bind(_ *http.Request) error {
	return nil
}

type issueCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (*issueCodeResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, http.StatusCreated)
	return nil
}

// access token response as defined in https://datatracker.ietf.org/doc/html/rfc6749#section-5.1
type accessTokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`

	// refresh_expires_in is not part of rfc 6749, extensions use it to
	// schedule a new sign in before the refresh token runs out
	RefreshExpiresIn *int            `json:"refresh_expires_in,omitempty"`
	User             *tokens.Profile `json:"user,omitempty"`
}

func (*accessTokenResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

type profileResponse struct {
	*tokens.Profile
}

func (*profileResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

type sessionsResponse struct {
	Sessions []*sessionEntry `json:"sessions"`
}

type sessionEntry struct {
	*tokens.Session
	Current bool `json:"current"`
}

func (*sessionsResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

type logoutResponse struct {
	Revoked int `json:"revoked"`
}

func (*logoutResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

// errors follow https://datatracker.ietf.org/doc/html/rfc6749#section-5.2
type oauthError string

const stdInvalidRequest oauthError = "invalid_request"

// The provided grant or refresh token is invalid, expired, revoked or was
// already used, which one is never disclosed
const stdInvalidGrant oauthError = "invalid_grant"

const stdUnsupportedGrantType oauthError = "unsupported_grant_type"

// https://datatracker.ietf.org/doc/html/rfc6749#section-4.1.2.1
const stdTemporarilyUnavailable oauthError = "temporarily_unavailable"

type stdErrorResponse struct {
	Error            oauthError `json:"error,omitempty"`
	ErrorDescription string     `json:"error_description,omitempty"`
	StatusCode       int        `json:"-"`
}

func (e *stdErrorResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func createStdError(err oauthError, status int, description string) *stdErrorResponse {
	return &stdErrorResponse{
		Error:            err,
		ErrorDescription: description,
		StatusCode:       status,
	}
}

type grantType string

const authorizationCodeGrant grantType = "authorization_code"
const refreshTokenGrant grantType = "refresh_token"
