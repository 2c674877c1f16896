package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("backup-1", "events_20241110_000000.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	id, name, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "backup-1", id)
	require.Equal(t, "events_20241110_000000.csv", name)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	base := time.Now()
	signer.now = func() time.Time { return base }
	token, _, err := signer.Generate("backup-1", "events.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	id, name, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "backup-1", id)
	require.Equal(t, "events.csv", name)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("backup-1", "events.csv")
	require.NoError(t, err)

	_, _, _, err = NewSignedURLSigner("other", time.Hour).Parse(token, false)
	require.Error(t, err)
	_, _, _, err = signer.Parse("a.b.c", false)
	require.Error(t, err)
	_, _, _, err = signer.Parse(token+"00", false)
	require.Error(t, err)

	_, _, err = signer.Generate("has.dot", "events.csv")
	require.Error(t, err)
	_, _, err = NewSignedURLSigner("", time.Hour).Generate("id", "events.csv")
	require.Error(t, err)
}
