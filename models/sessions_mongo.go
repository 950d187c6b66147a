package models

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSessionRepo struct {
	col *mongo.Collection
}

func NewMongoSessionRepository(col *mongo.Collection) SessionRepository {
	return &mongoSessionRepo{col: col}
}

// Put replaces any existing session for the user, so a second login always
// invalidates the first token.
func (r *mongoSessionRepo) Put(username, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": username},
		Session{Username: username, Token: token},
		options.Replace().SetUpsert(true))
	return err
}

func (r *mongoSessionRepo) Get(username string) (Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var s Session
	if err := r.col.FindOne(ctx, bson.M{"_id": username}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// Delete is idempotent; logging out without a session is not an error.
func (r *mongoSessionRepo) Delete(username string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": username})
	return err
}
