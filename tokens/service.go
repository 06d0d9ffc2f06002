package tokens

import (
	"context"
	"time"

	"github.com/eisenwinter/extrxx/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service bundles all token lifecycle operations over one record store and
// one user directory
type Service struct {
	log       *zap.Logger
	issuer    *CodeIssuer
	exchanger *CodeExchanger
	validator *AccessValidator
	refresher *Refresher
	revoker   *Revoker
	sweeper   *Sweeper
	sessions  SessionLister
	users     UserDirectory
}

func NewService(
	log *zap.Logger,
	cfg *config.TokenConfiguration,
	store RecordStore,
	users UserDirectory,
	opts ...Option,
) *Service {
	return &Service{
		log:       log,
		issuer:    NewCodeIssuer(log.Named("code_issuer"), cfg, store, users, opts...),
		exchanger: NewCodeExchanger(log.Named("code_exchanger"), cfg, store, store, users, opts...),
		validator: NewAccessValidator(log.Named("access_validator"), cfg, store, opts...),
		refresher: NewRefresher(log.Named("refresher"), cfg, store, opts...),
		revoker:   NewRevoker(log.Named("revoker"), cfg, store, opts...),
		sweeper:   NewSweeper(log.Named("sweeper"), store, opts...),
		sessions:  store,
		users:     users,
	}
}

// Start starts background maintenance of the validator
func (s *Service) Start() {
	s.validator.Start()
}

// Stop stops what Start started
func (s *Service) Stop() {
	s.validator.Stop()
}

func (s *Service) IssueCode(ctx context.Context, userID uuid.UUID, callbackURL string) (*AuthorizationCode, error) {
	return s.issuer.IssueCode(ctx, userID, callbackURL)
}

func (s *Service) Exchange(ctx context.Context, code string) (*TokenPair, error) {
	return s.exchanger.Exchange(ctx, code)
}

func (s *Service) Validate(ctx context.Context, accessToken string) (*Principal, error) {
	return s.validator.Validate(ctx, accessToken)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshedAccess, error) {
	return s.refresher.Refresh(ctx, refreshToken)
}

func (s *Service) RevokeOne(ctx context.Context, refreshToken string) error {
	return s.revoker.RevokeOne(ctx, refreshToken)
}

func (s *Service) RevokeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.revoker.RevokeAll(ctx, userID)
}

func (s *Service) Sweep(ctx context.Context, retention time.Duration) (int, int, error) {
	return s.sweeper.Sweep(ctx, retention)
}

// RunHousekeeping blocks and sweeps every interval until ctx is done
func (s *Service) RunHousekeeping(ctx context.Context, interval time.Duration, retention time.Duration) {
	s.sweeper.Run(ctx, interval, retention)
}

// Sessions lists the token records of a user without any token values
func (s *Service) Sessions(ctx context.Context, userID uuid.UUID) ([]*Session, error) {
	records, err := s.sessions.TokenRecordsForUser(ctx, userID)
	if err != nil {
		s.log.Error("could not list token records", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrUpstreamUnavailable
	}
	sessions := make([]*Session, 0, len(records))
	for _, r := range records {
		sessions = append(sessions, sessionFromRecord(r))
	}
	return sessions, nil
}

// Profile resolves a user, ErrInvalid if it does not exist
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := s.users.UserProfile(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}
