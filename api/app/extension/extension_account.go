package extension

import (
	"errors"
	"net/http"

	"github.com/eisenwinter/extrxx/api/auth"
	"github.com/eisenwinter/extrxx/tokens"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

func (c *ExtensionRessource) principal(w http.ResponseWriter, r *http.Request) (*tokens.Principal, bool) {
	p, err := auth.FromContext(r.Context())
	if err != nil {
		c.logger.Error("bearer group reached without principal", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}
	return p, true
}

func (c *ExtensionRessource) me(w http.ResponseWriter, r *http.Request) {
	p, ok := c.principal(w, r)
	if !ok {
		return
	}
	profile, err := c.service.Profile(r.Context(), p.UserID)
	if errors.Is(err, tokens.ErrInvalid) {
		// the user was removed after the token was issued
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if err != nil {
		c.fail(w, r, err, stdInvalidRequest, "")
		return
	}
	c.respond(w, r, &profileResponse{Profile: profile})
}

func (c *ExtensionRessource) sessions(w http.ResponseWriter, r *http.Request) {
	p, ok := c.principal(w, r)
	if !ok {
		return
	}
	sessions, err := c.service.Sessions(r.Context(), p.UserID)
	if err != nil {
		c.fail(w, r, err, stdInvalidRequest, "")
		return
	}
	res := &sessionsResponse{Sessions: make([]*sessionEntry, 0, len(sessions))}
	for _, s := range sessions {
		res.Sessions = append(res.Sessions, &sessionEntry{
			Session: s,
			Current: s.ID == p.TokenRecordID,
		})
	}
	c.respond(w, r, res)
}

func (c *ExtensionRessource) logout(w http.ResponseWriter, r *http.Request) {
	p, ok := c.principal(w, r)
	if !ok {
		return
	}
	n, err := c.service.RevokeAll(r.Context(), p.UserID)
	if err != nil {
		c.fail(w, r, err, stdInvalidRequest, "")
		return
	}
	c.logger.Info("user logged out from all devices", zap.String("user_id", p.UserID.String()), zap.Int("revoked", n))
	render.Status(r, http.StatusOK)
	c.respond(w, r, &logoutResponse{Revoked: n})
}
