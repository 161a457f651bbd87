package db

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkoryagin/tgaudio/pkg/config"
	"github.com/nkoryagin/tgaudio/pkg/core/cache"
)

// AuthStore holds the set of user IDs allowed to use the bot. An empty set
// leaves the bot open to everyone. Owner-granted access survives restarts
// when Mongo is configured; otherwise a memory store seeded from the
// environment is used.
type AuthStore interface {
	IsAllowed(ctx context.Context, userID int64) bool
	Allow(ctx context.Context, userID int64) error
	Deny(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]int64, error)
	Close(ctx context.Context) error
}

// Store is the global auth store, set once during startup.
var Store AuthStore

// InitStore connects the auth store. With MONGO_URI set it opens a Mongo
// connection and seeds the allow-list from the configuration; without it a
// purely in-memory store is used.
func InitStore(ctx context.Context) error {
	if len(config.Conf.AllowedUsers) == 0 {
		log.Println("[DB] The allow-list is empty; the bot is open to everyone until /allow is used.")
	}

	if config.Conf.MongoUri == "" {
		log.Println("[DB] MONGO_URI is not set; the allow-list will not persist across restarts.")
		Store = newMemoryStore(config.Conf.AllowedUsers)
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.Conf.MongoUri))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	store := &mongoStore{
		client:  client,
		users:   client.Database(config.Conf.DbName).Collection("allowed_users"),
		allowed: cache.NewCache[bool](20 * time.Minute),
	}
	for _, id := range config.Conf.AllowedUsers {
		if err := store.Allow(ctx, id); err != nil {
			return err
		}
	}

	Store = store
	log.Println("[DB] The database connection has been successfully established.")
	return nil
}

// restrictedKey caches whether the collection has any entries at all; an
// empty collection leaves the bot open.
const restrictedKey = "_restricted"

// mongoStore persists the allow-list in a Mongo collection with a
// read-through cache in front of it.
type mongoStore struct {
	client  *mongo.Client
	users   *mongo.Collection
	allowed *cache.Cache[bool]
}

func (s *mongoStore) IsAllowed(ctx context.Context, userID int64) bool {
	if !s.isRestricted(ctx) {
		return true
	}

	key := toKey(userID)
	if cached, ok := s.allowed.Get(key); ok {
		return cached
	}

	var doc bson.M
	err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		s.allowed.Set(key, false)
		return false
	} else if err != nil {
		log.Printf("[DB] An error occurred while checking the user: %v", err)
		return false
	}

	s.allowed.Set(key, true)
	return true
}

// isRestricted reports whether any allow-list entry exists.
func (s *mongoStore) isRestricted(ctx context.Context) bool {
	if cached, ok := s.allowed.Get(restrictedKey); ok {
		return cached
	}

	count, err := s.users.EstimatedDocumentCount(ctx)
	if err != nil {
		log.Printf("[DB] An error occurred while counting the users: %v", err)
		return true
	}

	s.allowed.Set(restrictedKey, count > 0)
	return count > 0
}

func (s *mongoStore) Allow(ctx context.Context, userID int64) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$setOnInsert": bson.M{}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	s.allowed.Set(toKey(userID), true)
	s.allowed.Set(restrictedKey, true)
	return nil
}

func (s *mongoStore) Deny(ctx context.Context, userID int64) error {
	_, err := s.users.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return err
	}
	s.allowed.Set(toKey(userID), false)
	s.allowed.Delete(restrictedKey)
	return nil
}

func (s *mongoStore) List(ctx context.Context) ([]int64, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []int64
	for cursor.Next(ctx) {
		var doc struct {
			ID int64 `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.ID)
		s.allowed.Set(toKey(doc.ID), true)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *mongoStore) Close(ctx context.Context) error {
	log.Println("[DB] Closing the database connection...")
	return s.client.Disconnect(ctx)
}
