package extension

import (
	"net/http"

	"github.com/eisenwinter/extrxx/sanitize"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

func (c *ExtensionRessource) token(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		c.logger.Info("could not parse form on token endpoint", zap.Error(err))
		c.respond(w, r, createStdError(stdInvalidRequest, http.StatusBadRequest, ""))
		return
	}
	// https://datatracker.ietf.org/doc/html/rfc6749#section-5.1
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	requested := r.FormValue("grant_type")
	switch grantType(requested) {
	case authorizationCodeGrant:
		code := r.FormValue("code")
		if code == "" {
			c.respond(w, r, createStdError(stdInvalidRequest, http.StatusBadRequest, "code field not supplied"))
			return
		}
		c.authorizationCodeGrant(code, w, r)
	case refreshTokenGrant:
		refreshToken := r.FormValue("refresh_token")
		if refreshToken == "" {
			c.respond(
				w,
				r,
				createStdError(stdInvalidRequest, http.StatusBadRequest, "refresh_token field not supplied"),
			)
			return
		}
		c.refreshTokenGrant(refreshToken, w, r)
	default:
		c.logger.Debug("unsupported grant type requested", sanitize.UserInputString("grant_type", requested))
		c.respond(w, r, createStdError(stdUnsupportedGrantType, http.StatusBadRequest, ""))
	}
}

func (c *ExtensionRessource) authorizationCodeGrant(code string, w http.ResponseWriter, r *http.Request) {
	pair, err := c.service.Exchange(r.Context(), code)
	if err != nil {
		c.logger.Debug("authorization code grant failed", zap.Error(err))
		c.fail(w, r, err, stdInvalidGrant, "")
		return
	}
	now := c.now()
	refreshExpiresIn := int(pair.RefreshTokenExpiresAt.Sub(now).Seconds())
	render.Status(r, http.StatusOK)
	c.respond(w, r, &accessTokenResponse{
		AccessToken:      pair.AccessToken,
		TokenType:        "Bearer",
		ExpiresIn:        int(pair.AccessTokenExpiresAt.Sub(now).Seconds()),
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresIn: &refreshExpiresIn,
		User:             pair.User,
	})
}

func (c *ExtensionRessource) refreshTokenGrant(refreshToken string, w http.ResponseWriter, r *http.Request) {
	refreshed, err := c.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		c.logger.Debug("refresh token grant failed", zap.Error(err))
		c.fail(w, r, err, stdInvalidGrant, "")
		return
	}
	c.respond(w, r, &accessTokenResponse{
		AccessToken: refreshed.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(refreshed.AccessTokenExpiresAt.Sub(c.now()).Seconds()),
	})
}
