package calendarsync

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testOAuthConfig() *OAuthConfig {
	return NewOAuthConfig("client-id", "client-secret", "http://localhost/oauth2callback")
}

func TestNewOAuthConfigNilWhenUnconfigured(t *testing.T) {
	require.Nil(t, NewOAuthConfig("", "secret", "url"))
	require.Nil(t, NewOAuthConfig("id", "", "url"))
	require.Nil(t, NewOAuthConfig("id", "secret", ""))
	require.NotNil(t, testOAuthConfig())
}

func TestStateTokenRoundTrip(t *testing.T) {
	cfg := testOAuthConfig()
	state := cfg.StateToken()
	require.True(t, cfg.VerifyState(state))
}

func TestVerifyStateRejectsTampering(t *testing.T) {
	cfg := testOAuthConfig()
	state := cfg.StateToken()

	require.False(t, cfg.VerifyState(""))
	require.False(t, cfg.VerifyState("no-separator"))
	require.False(t, cfg.VerifyState(state+"x"))

	other := NewOAuthConfig("client-id", "other-secret", "http://localhost/oauth2callback")
	require.False(t, other.VerifyState(state))
}

func TestVerifyStateRejectsStaleToken(t *testing.T) {
	cfg := testOAuthConfig()
	ts := strconv.FormatInt(time.Now().Add(-stateMaxAge-time.Minute).Unix(), 10)
	stale := ts + "." + cfg.signState(ts)
	require.False(t, cfg.VerifyState(stale))
}
