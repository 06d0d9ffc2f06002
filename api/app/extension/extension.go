package extension

import (
	"errors"
	"net/http"
	"time"

	"github.com/eisenwinter/extrxx/api/auth"
	"github.com/eisenwinter/extrxx/config"
	"github.com/eisenwinter/extrxx/sanitize"
	"github.com/eisenwinter/extrxx/tokens"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExtensionRessource serves the code, token, revocation and account
// endpoints used by browser extensions and the primary web application
type ExtensionRessource struct {
	logger    *zap.Logger
	service   Service
	validate  *validator.Validate
	issuerKey string
	cors      *config.CORSConfiguration
	now       func() time.Time
}

func NewExtensionRessource(
	logger *zap.Logger,
	service Service,
	validate *validator.Validate,
	cfg *config.ServerConfiguration,
) *ExtensionRessource {
	return &ExtensionRessource{
		logger:    logger,
		service:   service,
		validate:  validate,
		issuerKey: cfg.IssuerKey,
		cors:      cfg.CORS,
		now:       time.Now,
	}
}

func (c *ExtensionRessource) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins:   []string{"chrome-extension://*", "moz-extension://*", "safari-web-extension://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	if c.cors != nil {
		if len(c.cors.AllowedOrigins) > 0 {
			opts.AllowedOrigins = c.cors.AllowedOrigins
		}
		if len(c.cors.AllowedMethods) > 0 {
			opts.AllowedMethods = c.cors.AllowedMethods
		}
		opts.AllowCredentials = c.cors.AllowCredentials
	}
	return opts
}

func (c *ExtensionRessource) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(c.corsOptions()))

	// server to server, the issuer key header is not allowed cross origin
	r.With(auth.IssuerKeyAuthenticator(c.issuerKey)).Post("/code", c.issueCode)

	r.Post("/token", c.token)
	r.Post("/revoke", c.revoke)

	r.Group(func(ri chi.Router) {
		ri.Use(auth.BearerAuthenticator(c.service, c.logger))
		ri.Get("/me", c.me)
		ri.Get("/sessions", c.sessions)
		//logout means `log out from all devices`
		ri.Post("/logout", c.logout)
	})

	return r
}

func (c *ExtensionRessource) respond(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		c.logger.Error("unable to render response", zap.Error(err))
	}
}

// fail renders the boundary errors of the tokens package, invalid maps to
// the given oauth error and everything upstream to a 503
func (c *ExtensionRessource) fail(
	w http.ResponseWriter,
	r *http.Request,
	err error,
	invalid oauthError,
	description string,
) {
	if errors.Is(err, tokens.ErrUpstreamUnavailable) {
		w.Header().Set("Retry-After", "5")
		c.respond(w, r, createStdError(stdTemporarilyUnavailable, http.StatusServiceUnavailable, ""))
		return
	}
	c.respond(w, r, createStdError(invalid, http.StatusBadRequest, description))
}

func (c *ExtensionRessource) issueCode(w http.ResponseWriter, r *http.Request) {
	req := &issueCodeRequest{}
	if err := render.Bind(r, req); err != nil {
		c.logger.Info("could not decode code request", zap.Error(err))
		c.respond(w, r, createStdError(stdInvalidRequest, http.StatusBadRequest, "malformed body"))
		return
	}
	if err := c.validate.Struct(req); err != nil {
		c.respond(w, r, createStdError(stdInvalidRequest, http.StatusBadRequest, err.Error()))
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.respond(w, r, createStdError(stdInvalidRequest, http.StatusBadRequest, "malformed user_id"))
		return
	}
	code, err := c.service.IssueCode(r.Context(), userID, req.CallbackURL)
	if err != nil {
		c.logger.Debug(
			"code issuance refused",
			zap.String("user_id", userID.String()),
			sanitize.UserInputString("callback_url", req.CallbackURL),
			zap.Error(err),
		)
		c.fail(w, r, err, stdInvalidRequest, "unknown user")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	c.respond(w, r, &issueCodeResponse{
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
	})
}

func (c *ExtensionRessource) revoke(w http.ResponseWriter, r *http.Request) {
	//https://datatracker.ietf.org/doc/html/rfc7009#section-2.1
	if err := r.ParseForm(); err != nil {
		c.logger.Info("error on parsing form in revoke endpoint", zap.Error(err))
		c.respond(w, r, createStdError(stdInvalidRequest, http.StatusBadRequest, ""))
		return
	}
	token := r.FormValue("token")
	if token == "" {
		c.respond(w, r, createStdError(stdInvalidRequest, http.StatusBadRequest, "token field not supplied"))
		return
	}
	err := c.service.RevokeOne(r.Context(), token)
	if errors.Is(err, tokens.ErrUpstreamUnavailable) {
		c.fail(w, r, err, stdInvalidRequest, "")
		return
	}
	// invalid tokens do not cause an error response
	// https://datatracker.ietf.org/doc/html/rfc7009#section-2.2
	w.WriteHeader(http.StatusOK)
}
