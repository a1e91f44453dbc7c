package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef", time.Hour)

	tok, err := tm.New("s-1")
	require.NoError(t, err)

	c, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "s-1", c.SessionID)
	assert.Equal(t, issuer, c.Issuer)
}

func TestTokenMaker_RejectsOtherSecret(t *testing.T) {
	a := NewTokenMaker("secret-a-secret-a-secret-a-secret", time.Hour)
	b := NewTokenMaker("secret-b-secret-b-secret-b-secret", time.Hour)

	tok, err := a.New("s-1")
	require.NoError(t, err)

	_, err = b.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMaker_RejectsExpired(t *testing.T) {
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef", time.Minute)
	start := time.Now()
	tm.now = func() time.Time { return start }

	tok, err := tm.New("s-1")
	require.NoError(t, err)

	tm.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = tm.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMaker_RejectsGarbage(t *testing.T) {
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef", time.Hour)

	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := tm.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}
