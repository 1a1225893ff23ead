package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"task-reminder-report/internal/config"
	"task-reminder-report/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBClient wraps the MongoDB client backing the reminder pipeline: the
// key-value store for checkpoints/gates/trigger records, the tabular sources,
// the rendered destination documents, and the audience configuration.
type MongoDBClient struct {
	client              *mongo.Client
	database            *mongo.Database
	kvCollection        *mongo.Collection
	sourcesCollection   *mongo.Collection
	documentsCollection *mongo.Collection
	audiencesCollection *mongo.Collection
}

// kvEntry is one persisted key-value pair. Payloads are structured data
// serialized as text by the caller.
type kvEntry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// sourceDocument is one tabular source with its data rows
type sourceDocument struct {
	Name     string           `bson:"_id"`
	URL      string           `bson:"url"`
	Position int              `bson:"position"`
	Hidden   bool             `bson:"hidden"`
	Rows     []models.TaskRow `bson:"rows"`
}

// storedDocument is a rendered destination document, replaced wholesale on
// every render
type storedDocument struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	HTML      string    `bson:"html"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongoDBClient creates a new MongoDB client for the reminder store
func NewMongoDBClient(cfg config.MongoDBConfig) (*MongoDBClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Build connection URI
	uri := cfg.URI
	if uri == "" {
		// Build URI from components if URI not provided
		if cfg.Username != "" && cfg.Password != "" {
			// Use url.UserPassword to properly encode username and password
			userInfo := url.UserPassword(cfg.Username, cfg.Password)
			uri = fmt.Sprintf("mongodb://%s@%s:%s/%s?authSource=%s",
				userInfo.String(),
				cfg.Host,
				cfg.Port,
				cfg.Database,
				url.QueryEscape(cfg.AuthSource),
			)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%s/%s",
				cfg.Host,
				cfg.Port,
				cfg.Database,
			)
		}
	}

	// Log connection attempt (mask password for security)
	logURI := uri
	if cfg.Password != "" && cfg.Username != "" {
		userInfo := url.User(cfg.Username)
		authSource := cfg.AuthSource
		if authSource == "" {
			authSource = "admin"
		}
		logURI = fmt.Sprintf("mongodb://%s:***@%s:%s/%s?authSource=%s",
			userInfo.String(), cfg.Host, cfg.Port, cfg.Database, url.QueryEscape(authSource))
	}
	log.Printf("Attempting to connect to MongoDB at %s", logURI)

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", logURI, err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", logURI, err)
	}

	database := client.Database(cfg.Database)
	kvCollection := database.Collection("kv")
	sourcesCollection := database.Collection("sources")
	documentsCollection := database.Collection("documents")
	audiencesCollection := database.Collection("audiences")

	// Sources are enumerated in position order; index the sort key
	positionIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}},
	}
	_, err = sourcesCollection.Indexes().CreateOne(ctx, positionIndex)
	if err != nil {
		// Index might already exist, that's okay
		log.Printf("Note: MongoDB sources index creation: %v", err)
	}

	audienceIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err = audiencesCollection.Indexes().CreateOne(ctx, audienceIndex)
	if err != nil {
		log.Printf("Note: MongoDB audiences index creation: %v", err)
	}

	return &MongoDBClient{
		client:              client,
		database:            database,
		kvCollection:        kvCollection,
		sourcesCollection:   sourcesCollection,
		documentsCollection: documentsCollection,
		audiencesCollection: audiencesCollection,
	}, nil
}

// Close closes the MongoDB client connection
func (c *MongoDBClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// Get retrieves a persisted value by key. The second return value reports
// whether the key was present.
func (c *MongoDBClient) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var entry kvEntry
	err := c.kvCollection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query key %s: %w", key, err)
	}

	return entry.Value, true, nil
}

// Set stores a value under key, replacing any existing value
func (c *MongoDBClient) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": key}
	update := bson.M{"$set": entry}

	_, err := c.kvCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *MongoDBClient) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.kvCollection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}

// ListSources returns all tabular sources in enumeration order: ascending
// position, ties broken by name. Hidden sources are included; hidden-ness
// only affects presentation elsewhere, not scanning scope.
func (c *MongoDBClient) ListSources() ([]models.SourceInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := c.sourcesCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []sourceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sources: %w", err)
	}

	infos := make([]models.SourceInfo, len(docs))
	for i, doc := range docs {
		infos[i] = models.SourceInfo{
			Name:     doc.Name,
			URL:      doc.URL,
			Position: doc.Position,
			Hidden:   doc.Hidden,
		}
	}

	return infos, nil
}

// SourceRows returns the data rows of one source, in row order. Returns
// (nil, nil) when the source has no data rows or does not exist.
func (c *MongoDBClient) SourceRows(name string) ([]models.TaskRow, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc sourceDocument
	err := c.sourcesCollection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query source %s: %w", name, err)
	}

	return doc.Rows, nil
}

// UpsertSource creates or replaces a tabular source
func (c *MongoDBClient) UpsertSource(info models.SourceInfo, rows []models.TaskRow) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	doc := sourceDocument{
		Name:     info.Name,
		URL:      info.URL,
		Position: info.Position,
		Hidden:   info.Hidden,
		Rows:     rows,
	}

	opts := options.Update().SetUpsert(true)
	_, err := c.sourcesCollection.UpdateOne(ctx, bson.M{"_id": info.Name}, bson.M{"$set": doc}, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert source %s: %w", info.Name, err)
	}

	return nil
}

// ReplaceDocument stores a rendered destination document, fully replacing
// any prior content so repeated renders do not accumulate tables
func (c *MongoDBClient) ReplaceDocument(doc models.ReportDocument) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stored := storedDocument{
		ID:        doc.ID,
		Title:     doc.Title,
		HTML:      doc.HTML,
		UpdatedAt: time.Now(),
	}

	opts := options.Update().SetUpsert(true)
	_, err := c.documentsCollection.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": stored}, opts)
	if err != nil {
		return fmt.Errorf("failed to replace document %s: %w", doc.ID, err)
	}

	return nil
}

// GetDocument retrieves a rendered document by id. Returns (nil, nil) when
// the document does not exist.
func (c *MongoDBClient) GetDocument(id string) (*models.ReportDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var stored storedDocument
	err := c.documentsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&stored)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query document %s: %w", id, err)
	}

	return &models.ReportDocument{ID: stored.ID, Title: stored.Title, HTML: stored.HTML}, nil
}

// GetAudience retrieves one audience configuration. Returns (nil, nil) when
// the audience is not configured.
func (c *MongoDBClient) GetAudience(name string) (*models.AudienceConfig, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var audience models.AudienceConfig
	err := c.audiencesCollection.FindOne(ctx, bson.M{"name": name}).Decode(&audience)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query audience %s: %w", name, err)
	}

	return &audience, nil
}

// ListAudiences retrieves all configured audiences
func (c *MongoDBClient) ListAudiences() ([]models.AudienceConfig, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := c.audiencesCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query audiences: %w", err)
	}
	defer cursor.Close(ctx)

	var audiences []models.AudienceConfig
	if err := cursor.All(ctx, &audiences); err != nil {
		return nil, fmt.Errorf("failed to decode audiences: %w", err)
	}

	return audiences, nil
}

// UpsertAudience creates or replaces an audience configuration
func (c *MongoDBClient) UpsertAudience(audience models.AudienceConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"name": audience.Name}
	update := bson.M{"$set": audience}

	_, err := c.audiencesCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert audience %s: %w", audience.Name, err)
	}

	return nil
}
