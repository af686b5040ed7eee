package repository

import (
	"context"
	"testing"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshot(id string) *entity.SessionSnapshot {
	return &entity.SessionSnapshot{
		ID:     id,
		Role:   "host",
		Marker: "O",
		Turn:   2,
		Mover:  "X",
		Board:  [9]string{"O", "", "", "", "", "", "", "", ""},
		Status: entity.StatusOngoing,
	}
}

var repositories = map[string]func(t *testing.T) (context.Context, SessionRepository){
	"redis": func(t *testing.T) (context.Context, SessionRepository) {
		t.Helper()

		ctx, st := suite.New(t)
		return ctx, NewSessionRepository(st.Storage)
	},
	"memory": func(t *testing.T) (context.Context, SessionRepository) {
		t.Helper()

		return context.Background(), NewMemorySessionRepository()
	},
}

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	for name, newRepo := range repositories {
		t.Run(name, func(t *testing.T) {
			ctx, sessionRepo := newRepo(t)

			// Given: a stored snapshot
			snapshot := newSnapshot("abc")
			require.NoError(t, sessionRepo.CreateOrUpdate(ctx, snapshot))

			// When: the snapshot is updated after the next move
			snapshot.Turn = 3
			snapshot.Mover = "O"
			snapshot.Board[4] = "X"
			require.NoError(t, sessionRepo.CreateOrUpdate(ctx, snapshot))

			// Then: the latest version is returned
			stored, err := sessionRepo.GetByID(ctx, "abc")
			require.NoError(t, err)
			assert.Equal(t, snapshot, stored)
		})
	}
}

func TestSessionRepository_GetByID(t *testing.T) {
	for name, newRepo := range repositories {
		t.Run(name+"_NotFound", func(t *testing.T) {
			ctx, sessionRepo := newRepo(t)

			// When: GetByID is called with non-existent ID
			stored, err := sessionRepo.GetByID(ctx, "9999999")

			// Then: an ErrSessionNotFound error should be returned
			require.ErrorIs(t, err, ErrSessionNotFound)
			assert.Empty(t, stored.ID)
		})
	}
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	for name, newRepo := range repositories {
		t.Run(name, func(t *testing.T) {
			ctx, sessionRepo := newRepo(t)

			// Given: a stored snapshot
			require.NoError(t, sessionRepo.CreateOrUpdate(ctx, newSnapshot("abc")))

			// When: DeleteByID is called with existing ID
			err := sessionRepo.DeleteByID(ctx, "abc")

			// Then: the snapshot is gone
			require.NoError(t, err)
			_, err = sessionRepo.GetByID(ctx, "abc")
			require.ErrorIs(t, err, ErrSessionNotFound)

			// Then: deleting again reports ErrSessionNotFound
			require.ErrorIs(t, sessionRepo.DeleteByID(ctx, "abc"), ErrSessionNotFound)
		})
	}
}
