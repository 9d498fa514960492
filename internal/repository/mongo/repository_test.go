package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
	domain "github.com/open-builders/gws-backend/internal/domain/user"
)

const ns = "gws.giveaways"

func TestGiveawayRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	end := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("get by id decodes document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "g1"},
			{Key: "title", Value: "Weekly"},
			{Key: "endTime", Value: end},
			{Key: "state", Value: "active"},
			{Key: "participants", Value: bson.A{"u1", "u2"}},
			{Key: "totalParticipants", Value: 2},
			{Key: "totalEntries", Value: 2},
			{Key: "version", Value: int64(3)},
		}))

		g, err := NewGiveawayRepository(mt.DB).GetByID(context.Background(), "g1")
		require.NoError(mt, err)
		assert.Equal(mt, dg.StateActive, g.State)
		assert.Equal(mt, []string{"u1", "u2"}, g.Participants)
		assert.Equal(mt, int64(3), g.Version)
		assert.Nil(mt, g.Winner)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewGiveawayRepository(mt.DB).GetByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, dg.ErrNotFound)
	})

	mt.Run("save bumps version", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		g := &dg.Giveaway{ID: "g1", State: dg.StateActive, Participants: []string{"u1"}, TotalParticipants: 1, TotalEntries: 1, Version: 3}
		require.NoError(mt, NewGiveawayRepository(mt.DB).Save(context.Background(), g, 3))
		assert.Equal(mt, int64(4), g.Version)
	})

	mt.Run("save with stale version", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: "g1"}}),
		)

		g := &dg.Giveaway{ID: "g1", State: dg.StateActive, Version: 3}
		err := NewGiveawayRepository(mt.DB).Save(context.Background(), g, 3)
		assert.ErrorIs(mt, err, dg.ErrVersionConflict)
		assert.Equal(mt, int64(3), g.Version)
	})

	mt.Run("save of deleted giveaway", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		err := NewGiveawayRepository(mt.DB).Save(context.Background(), &dg.Giveaway{ID: "g1"}, 3)
		assert.ErrorIs(mt, err, dg.ErrNotFound)
	})
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("maps account fields", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "gws.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "kickUsername", Value: "kicker"},
			{Key: "rainbetUsername", Value: "Better"},
		}))

		u, err := NewUserRepository(mt.DB).GetByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), u.ID)
		assert.Equal(mt, "kicker", u.Username)
		assert.Equal(mt, "Better", u.ExternalHandle)
		assert.Equal(mt, domain.RoleUser, u.Role)
	})

	mt.Run("missing profile", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "gws.users", mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).GetByID(context.Background(), "nobody")
		assert.ErrorIs(mt, err, domain.ErrProfileNotFound)
	})
}
