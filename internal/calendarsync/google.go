package calendarsync

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const stateMaxAge = 10 * time.Minute

// OAuthConfig holds the OAuth2 configuration used both to bootstrap a
// token (auth URL + code exchange) and to build the calendar client.
type OAuthConfig struct {
	Config *oauth2.Config
}

// NewOAuthConfig returns nil when Google Calendar is not configured.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *OAuthConfig {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}
	return &OAuthConfig{Config: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}}
}

// AuthCodeURL starts the consent flow.
func (c *OAuthConfig) AuthCodeURL(state string) string {
	return c.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// StateToken returns a signed, time-limited state value for the consent
// flow so the callback can reject forged redirects.
func (c *OAuthConfig) StateToken() string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	return ts + "." + c.signState(ts)
}

// VerifyState checks the state's signature and freshness.
func (c *OAuthConfig) VerifyState(state string) bool {
	ts, sig, ok := strings.Cut(state, ".")
	if !ok {
		return false
	}
	if !hmac.Equal([]byte(sig), []byte(c.signState(ts))) {
		return false
	}
	issued, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	age := time.Since(time.Unix(issued, 0))
	return age >= 0 && age <= stateMaxAge
}

func (c *OAuthConfig) signState(ts string) string {
	mac := hmac.New(sha256.New, []byte(c.Config.ClientSecret))
	mac.Write([]byte("oauth-state:" + ts))
	return hex.EncodeToString(mac.Sum(nil))
}

// Exchange swaps an authorization code for a token and returns it as JSON,
// suitable for storing in GOOGLE_TOKEN_JSON.
func (c *OAuthConfig) Exchange(ctx context.Context, code string) (string, error) {
	token, err := c.Config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("calendarsync: exchange code: %w", err)
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("calendarsync: encode token: %w", err)
	}
	return string(raw), nil
}

// GoogleInserter creates events through the Google Calendar API.
type GoogleInserter struct {
	svc        *calendar.Service
	calendarID string
}

// NewGoogleInserter builds a calendar client from the OAuth config and a
// previously stored token (JSON, as produced by Exchange).
func NewGoogleInserter(ctx context.Context, cfg *OAuthConfig, tokenJSON, calendarID string) (*GoogleInserter, error) {
	if cfg == nil || tokenJSON == "" {
		return nil, fmt.Errorf("calendarsync: google calendar not configured")
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(tokenJSON), &token); err != nil {
		return nil, fmt.Errorf("calendarsync: decode token: %w", err)
	}
	client := cfg.Config.Client(ctx, &token)
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("calendarsync: build calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleInserter{svc: svc, calendarID: calendarID}, nil
}

func (g *GoogleInserter) Insert(ctx context.Context, ev Event) error {
	event := &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{DateTime: ev.StartAt.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: ev.EndAt.Format(time.RFC3339)},
	}
	if _, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendarsync: insert event: %w", err)
	}
	return nil
}
