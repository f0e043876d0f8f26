package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wartahukum/newsroom/internal/news"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func testUser() news.User {
	return news.User{ID: "user-1", Username: "admin", Role: news.RoleAdmin}
}

func TestIssueParseRoundTrip(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)}
	mgr, err := NewManager("sekrit", time.Hour, clk)
	require.NoError(t, err)

	token, err := mgr.Issue(testUser())
	require.NoError(t, err)

	claims, err := mgr.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "admin", claims.Username)
	require.Equal(t, news.RoleAdmin, claims.Role)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)}
	mgr, err := NewManager("sekrit", time.Hour, clk)
	require.NoError(t, err)

	token, err := mgr.Issue(testUser())
	require.NoError(t, err)

	clk.now = clk.now.Add(2 * time.Hour)
	_, err = mgr.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)}
	issuer, err := NewManager("sekrit", time.Hour, clk)
	require.NoError(t, err)
	verifier, err := NewManager("other", time.Hour, clk)
	require.NoError(t, err)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Now().UTC()}
	mgr, err := NewManager("sekrit", time.Hour, clk)
	require.NoError(t, err)

	_, err = mgr.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewManager("", time.Hour, &fakeClock{now: time.Now()})
	require.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("asd")
	require.NoError(t, err)
	require.NotEqual(t, "asd", hash)

	require.True(t, CheckPassword(hash, "asd"))
	require.False(t, CheckPassword(hash, "wrong"))
}
