package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
)

type giveawayDocument struct {
	ID                string     `bson:"_id"`
	Title             string     `bson:"title"`
	EndTime           time.Time  `bson:"endTime"`
	State             string     `bson:"state"`
	Participants      []string   `bson:"participants"`
	TotalParticipants int        `bson:"totalParticipants"`
	TotalEntries      int        `bson:"totalEntries"`
	Winner            *string    `bson:"winner"`
	Version           int64      `bson:"version"`
	CreatedAt         time.Time  `bson:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt"`
	CompletedAt       *time.Time `bson:"completedAt"`
}

func toDocument(g *dg.Giveaway) giveawayDocument {
	participants := g.Participants
	if participants == nil {
		participants = []string{}
	}
	return giveawayDocument{
		ID:                g.ID,
		Title:             g.Title,
		EndTime:           g.EndTime,
		State:             string(g.State),
		Participants:      participants,
		TotalParticipants: g.TotalParticipants,
		TotalEntries:      g.TotalEntries,
		Winner:            g.Winner,
		Version:           g.Version,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
		CompletedAt:       g.CompletedAt,
	}
}

func (d giveawayDocument) toDomain() dg.Giveaway {
	participants := d.Participants
	if participants == nil {
		participants = []string{}
	}
	return dg.Giveaway{
		ID:                d.ID,
		Title:             d.Title,
		EndTime:           d.EndTime.UTC(),
		State:             dg.State(d.State),
		Participants:      participants,
		TotalParticipants: d.TotalParticipants,
		TotalEntries:      d.TotalEntries,
		Winner:            d.Winner,
		Version:           d.Version,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
		CompletedAt:       d.CompletedAt,
	}
}

// GiveawayRepository stores giveaways in the "giveaways" collection.
type GiveawayRepository struct {
	collection *mongo.Collection
}

func NewGiveawayRepository(db *mongo.Database) *GiveawayRepository {
	return &GiveawayRepository{collection: db.Collection("giveaways")}
}

// Create inserts a new giveaway document.
func (r *GiveawayRepository) Create(ctx context.Context, g *dg.Giveaway) error {
	if _, err := r.collection.InsertOne(ctx, toDocument(g)); err != nil {
		return fmt.Errorf("insert giveaway: %w", err)
	}
	return nil
}

// GetByID finds a giveaway by id.
func (r *GiveawayRepository) GetByID(ctx context.Context, id string) (*dg.Giveaway, error) {
	var doc giveawayDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find giveaway: %w", err)
	}
	g := doc.toDomain()
	return &g, nil
}

// ListDue finds active giveaways whose endTime has passed.
func (r *GiveawayRepository) ListDue(ctx context.Context, now time.Time) ([]dg.Giveaway, error) {
	filter := bson.M{
		"state":   string(dg.StateActive),
		"endTime": bson.M{"$lte": now},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "endTime", Value: 1}}))
}

// ListAll returns every giveaway, newest first.
func (r *GiveawayRepository) ListAll(ctx context.Context) ([]dg.Giveaway, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *GiveawayRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]dg.Giveaway, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find giveaways: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []giveawayDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode giveaways: %w", err)
	}
	out := make([]dg.Giveaway, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Save replaces mutable fields when the stored version matches expectedVersion.
func (r *GiveawayRepository) Save(ctx context.Context, g *dg.Giveaway, expectedVersion int64) error {
	doc := toDocument(g)
	update := bson.M{
		"$set": bson.M{
			"title":             doc.Title,
			"endTime":           doc.EndTime,
			"state":             doc.State,
			"participants":      doc.Participants,
			"totalParticipants": doc.TotalParticipants,
			"totalEntries":      doc.TotalEntries,
			"winner":            doc.Winner,
			"updatedAt":         doc.UpdatedAt,
			"completedAt":       doc.CompletedAt,
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": g.ID, "version": expectedVersion}, update)
	if err != nil {
		return fmt.Errorf("update giveaway: %w", err)
	}
	if res.MatchedCount == 0 {
		err := r.collection.FindOne(ctx, bson.M{"_id": g.ID}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dg.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check giveaway: %w", err)
		}
		return dg.ErrVersionConflict
	}
	g.Version = expectedVersion + 1
	return nil
}

// Ping checks connectivity.
func (r *GiveawayRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}
