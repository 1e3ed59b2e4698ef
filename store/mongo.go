// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/danielhkuo/live-poll/models"
)

// VotesCollection is the MongoDB collection holding vote documents
const VotesCollection = "votes"

// MongoStore keeps votes as documents in MongoDB
type MongoStore struct {
	client *mongo.Client
	votes  *mongo.Collection
}

// voteDocument mirrors the stored shape. _id is the vote UUID for new
// documents; older documents may carry a generated ObjectID instead.
type voteDocument struct {
	ID             interface{} `bson:"_id"`
	QuestionID     int         `bson:"questionId"`
	SelectedOption string      `bson:"selectedOption"`
	CreatedAt      time.Time   `bson:"createdAt,omitempty"`
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		votes:  client.Database(database).Collection(VotesCollection),
	}, nil
}

func (s *MongoStore) Append(ctx context.Context, vote models.Vote) error {
	_, err := s.votes.InsertOne(ctx, toDocument(vote))
	return insertError(err)
}

// insertError maps an InsertOne error to the VoteStore contract
func insertError(err error) error {
	if err == nil {
		return nil
	}
	// Same ID already stored: an earlier attempt went through
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return fmt.Errorf("%w: failed to insert vote: %w", ErrStoreUnavailable, err)
}

func (s *MongoStore) FetchAll(ctx context.Context) ([]models.Vote, error) {
	cursor, err := s.votes.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query votes: %w", ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	return decodeVotes(ctx, cursor)
}

// documentCursor is the part of *mongo.Cursor that decodeVotes reads
type documentCursor interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Err() error
}

// decodeVotes reads every document from cursor. A document that does not
// decode (e.g. a non-integral questionId) is logged and skipped.
func decodeVotes(ctx context.Context, cursor documentCursor) ([]models.Vote, error) {
	votes := []models.Vote{}
	skipped := 0

	for cursor.Next(ctx) {
		var doc voteDocument
		if err := cursor.Decode(&doc); err != nil {
			skipped++
			slog.Warn("skipping undecodable vote document", "error", err)
			continue
		}
		votes = append(votes, fromDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read votes: %w", ErrStoreUnavailable, err)
	}

	if skipped > 0 {
		slog.Warn("vote documents skipped", "skipped", skipped, "decoded", len(votes))
	}
	return votes, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toDocument(vote models.Vote) voteDocument {
	createdAt := vote.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return voteDocument{
		ID:             vote.ID,
		QuestionID:     vote.QuestionID,
		SelectedOption: vote.SelectedOption,
		CreatedAt:      createdAt.UTC(),
	}
}

func fromDocument(doc voteDocument) models.Vote {
	vote := models.Vote{
		QuestionID:     doc.QuestionID,
		SelectedOption: doc.SelectedOption,
		CreatedAt:      doc.CreatedAt,
	}
	switch id := doc.ID.(type) {
	case string:
		vote.ID = id
	case primitive.ObjectID:
		vote.ID = id.Hex()
	case nil:
	default:
		vote.ID = fmt.Sprint(id)
	}
	return vote
}
