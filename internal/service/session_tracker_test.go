package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(repo *memorySessionRepo) *SessionTracker {
	logger, _ := test.NewNullLogger()
	return NewSessionTracker(repo, staticDevices{}, logger)
}

func TestSessionTracker_AdmitOncePerOrigin(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySessionRepo()
	tracker := newTestTracker(repo)
	userID := uuid.New()

	first, created, err := tracker.Admit(ctx, userID, "1.1.1.1", "Firefox")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Firefox", first.Device.Data().Client)

	second, created, err := tracker.Admit(ctx, userID, "1.1.1.1", "Chrome")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.createCalls)

	_, created, err = tracker.Admit(ctx, userID, "2.2.2.2", "Chrome")
	require.NoError(t, err)
	assert.True(t, created)

	sessions, err := tracker.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSessionTracker_AdmitDuplicateRaceIsHarmless(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySessionRepo()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	tracker := NewSessionTracker(repo, staticDevices{}, logger)
	userID := uuid.New()

	_, _, err := tracker.Admit(ctx, userID, "1.1.1.1", "ua")
	require.NoError(t, err)

	repo.hideNextLookup = true
	session, created, err := tracker.Admit(ctx, userID, "1.1.1.1", "ua")
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, session)
	assert.Equal(t, "1.1.1.1", session.IPAddress)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "session created concurrently", hook.LastEntry().Message)
}

func TestSessionTracker_Established(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(newMemorySessionRepo())
	userID := uuid.New()

	ok, err := tracker.Established(ctx, userID, "1.1.1.1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = tracker.Admit(ctx, userID, "1.1.1.1", "")
	require.NoError(t, err)

	ok, err = tracker.Established(ctx, userID, "1.1.1.1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tracker.Established(ctx, userID, "9.9.9.9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionTracker_Deletes(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(newMemorySessionRepo())
	userID := uuid.New()
	otherID := uuid.New()

	first, _, err := tracker.Admit(ctx, userID, "1.1.1.1", "")
	require.NoError(t, err)
	_, _, err = tracker.Admit(ctx, userID, "2.2.2.2", "")
	require.NoError(t, err)
	_, _, err = tracker.Admit(ctx, userID, "3.3.3.3", "")
	require.NoError(t, err)

	err = tracker.DeleteOne(ctx, otherID, first.ID)
	assert.ErrorIs(t, err, ErrNotFound, "a session of another user is not found")

	require.NoError(t, tracker.DeleteOne(ctx, userID, first.ID))
	assert.ErrorIs(t, tracker.DeleteOne(ctx, userID, first.ID), ErrNotFound)

	require.NoError(t, tracker.DeleteAllForOrigin(ctx, userID, "2.2.2.2"))
	sessions, err := tracker.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "3.3.3.3", sessions[0].IPAddress)

	require.NoError(t, tracker.DeleteAll(ctx, userID))
	sessions, err = tracker.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
