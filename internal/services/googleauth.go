package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/datatypes"

	"github.com/pitstop/pitstop-backend/internal/clients/gcal"
	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/repos"
	"github.com/pitstop/pitstop-backend/internal/utils"
)

const calendarScope = "https://www.googleapis.com/auth/calendar"

// GoogleAuthService owns the calendar consent flow: it hands out consent
// URLs, stores the exchanged token on the user row, and builds calendar
// stores from that stored token.
type GoogleAuthService interface {
	AuthURL(userID uuid.UUID) string
	HandleCallback(ctx context.Context, state, code string) error
	StoreForUser(ctx context.Context, userID uuid.UUID) (gcal.Store, error)
	Connected(ctx context.Context, userID uuid.UUID) (bool, error)
}

type googleAuthService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	conf     *oauth2.Config
}

func NewGoogleAuthService(log *logger.Logger, userRepo repos.UserRepo) (GoogleAuthService, error) {
	serviceLog := log.With("service", "GoogleAuthService")
	clientID := utils.GetEnv("GOOGLE_CLIENT_ID", "", serviceLog)
	clientSecret := utils.GetEnv("GOOGLE_CLIENT_SECRET", "", serviceLog)
	redirectURL := utils.GetEnv("GOOGLE_REDIRECT_URL", "", serviceLog)
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URL are required")
	}
	return &googleAuthService{
		log:      serviceLog,
		userRepo: userRepo,
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{calendarScope},
			Endpoint:     google.Endpoint,
		},
	}, nil
}

// AuthURL returns the consent URL for one learner. The state parameter
// carries the user id back through the redirect.
func (s *googleAuthService) AuthURL(userID uuid.UUID) string {
	return s.conf.AuthCodeURL(userID.String(),
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (s *googleAuthService) HandleCallback(ctx context.Context, state, code string) error {
	userID, err := uuid.Parse(state)
	if err != nil {
		return fmt.Errorf("invalid oauth state: %w", err)
	}
	if code == "" {
		return fmt.Errorf("missing oauth code")
	}
	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange oauth code: %w", err)
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal oauth token: %w", err)
	}
	if err := s.userRepo.SaveGoogleToken(ctx, nil, userID, datatypes.JSON(raw)); err != nil {
		return fmt.Errorf("persist oauth token: %w", err)
	}
	s.log.Info("Stored calendar credentials", "user_id", userID)
	return nil
}

// StoreForUser builds a calendar store from the learner's stored token. The
// underlying token source refreshes and is not written back; the refresh
// token survives, so the stored row keeps working.
func (s *googleAuthService) StoreForUser(ctx context.Context, userID uuid.UUID) (gcal.Store, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if len(user.GoogleToken) == 0 {
		return nil, fmt.Errorf("google calendar is not connected")
	}
	var token oauth2.Token
	if err := json.Unmarshal(user.GoogleToken, &token); err != nil {
		return nil, fmt.Errorf("decode stored oauth token: %w", err)
	}
	return gcal.NewStore(ctx, s.log, s.conf, &token, calendarTimezone())
}

func (s *googleAuthService) Connected(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return false, err
	}
	return len(user.GoogleToken) > 0, nil
}
