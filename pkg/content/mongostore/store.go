// Package mongostore implements the content storage contracts on MongoDB.
//
// Entities live in the "entities" collection, reusable block revisions in
// "block_revisions". Documents mirror content.Entity with translations
// embedded, so one round trip loads an entity and all its variants.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wayfind-cms/wayfind/pkg/content"
)

const (
	entityCollection   = "entities"
	revisionCollection = "block_revisions"

	connectTimeout = 10 * time.Second
)

// Store implements content.Store and content.BlockStore on a Mongo database.
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	definitions map[string]*content.Definition
}

// entityDoc is the persisted shape of an entity.
type entityDoc struct {
	UUID         string         `bson:"uuid"`
	InternalID   int            `bson:"internal_id"`
	EntityType   string         `bson:"entity_type"`
	Bundle       string         `bson:"bundle"`
	Langcode     string         `bson:"langcode"`
	Label        string         `bson:"label"`
	Published    bool           `bson:"published"`
	Fields       map[string]any `bson:"fields,omitempty"`
	Translations []entityDoc    `bson:"translations,omitempty"`
}

// revisionDoc wraps an entity document with its revision identifier.
type revisionDoc struct {
	RevisionID int       `bson:"revision_id"`
	Entity     entityDoc `bson:"entity"`
}

// Connect opens a Mongo connection and returns a Store over the named
// database. The returned Store uses the standard definitions ("node",
// "block_content" content-bearing, "config" not).
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(database),
		definitions: map[string]*content.Definition{
			"node":          {ID: "node", Label: "Content", ContentBearing: true},
			"block_content": {ID: "block_content", Label: "Custom block", ContentBearing: true},
			"config":        {ID: "config", Label: "Configuration", ContentBearing: false},
		},
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// GetDefinition returns the definition for entityTypeID, or nil if unknown.
func (s *Store) GetDefinition(ctx context.Context, entityTypeID string) (*content.Definition, error) {
	return s.definitions[entityTypeID], nil
}

// LoadByUUID loads an entity document and rebuilds it with translations.
// Returns nil, nil when no document matches.
func (s *Store) LoadByUUID(ctx context.Context, entityTypeID, id string) (*content.Entity, error) {
	var doc entityDoc
	err := s.db.Collection(entityCollection).
		FindOne(ctx, bson.M{"entity_type": entityTypeID, "uuid": id}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load entity %s/%s: %w", entityTypeID, id, err)
	}
	return doc.toEntity(), nil
}

// Access grants "view" on published entities and denies everything else.
func (s *Store) Access(ctx context.Context, e *content.Entity, op string) bool {
	if e == nil || op != "view" {
		return false
	}
	return e.Published
}

// Available reports whether the revision collection holds any documents.
// An empty collection means the site has no reusable block content.
func (s *Store) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	n, err := s.db.Collection(revisionCollection).EstimatedDocumentCount(ctx)
	if err != nil {
		return false
	}
	return n > 0
}

// LoadRevision loads a block revision by numeric identifier.
// Returns nil, nil when no document matches.
func (s *Store) LoadRevision(ctx context.Context, revisionID int) (*content.Entity, error) {
	var doc revisionDoc
	err := s.db.Collection(revisionCollection).
		FindOne(ctx, bson.M{"revision_id": revisionID}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load revision %d: %w", revisionID, err)
	}
	return doc.Entity.toEntity(), nil
}

func (d entityDoc) toEntity() *content.Entity {
	e := &content.Entity{
		UUID:       d.UUID,
		InternalID: d.InternalID,
		EntityType: d.EntityType,
		Bundle:     d.Bundle,
		Langcode:   d.Langcode,
		Label:      d.Label,
		Published:  d.Published,
		Fields:     d.Fields,
	}
	for _, td := range d.Translations {
		e.AddTranslation(td.toEntity())
	}
	return e
}

// Ensure Store implements both storage contracts.
var (
	_ content.Store      = (*Store)(nil)
	_ content.BlockStore = (*Store)(nil)
)
