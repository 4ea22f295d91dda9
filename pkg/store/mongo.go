package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/fetchtree/pkg/document"
	"github.com/matzehuels/fetchtree/pkg/errors"
	"github.com/matzehuels/fetchtree/pkg/node"
	"github.com/matzehuels/fetchtree/pkg/project"
)

// Collection names used by MongoStore.
const (
	ProjectsCollection = "projects"
	MetaCollection     = "meta"
)

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI      string
	Database string // default "fetchtree"
	Timeout  time.Duration
}

// MongoStore keeps projects in a MongoDB collection. Trees are stored as
// JSON snapshots because BSON limits document nesting depth.
type MongoStore struct {
	client   *mongo.Client
	projects *mongo.Collection
	meta     *mongo.Collection
}

// mongoProject is the stored document shape.
type mongoProject struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Location  string    `bson:"location,omitempty"`
	Format    string    `bson:"format"`
	Checksum  string    `bson:"checksum,omitempty"`
	Nodes     int       `bson:"nodes"`
	Root      []byte    `bson:"root,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoCurrent struct {
	ID        string `bson:"_id"`
	ProjectID string `bson:"project_id"`
}

// NewMongoStore connects to MongoDB and pings the primary.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo store: URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = "fetchtree"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client:   client,
		projects: db.Collection(ProjectsCollection),
		meta:     db.Collection(MetaCollection),
	}
	_, err = s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

func toMongo(p *project.Project) (mongoProject, error) {
	root, err := json.Marshal(p.Root)
	if err != nil {
		return mongoProject{}, fmt.Errorf("marshal tree: %w", err)
	}
	return mongoProject{
		ID:        p.ID,
		Name:      p.Name,
		Location:  p.Location,
		Format:    string(p.Format),
		Checksum:  p.Checksum,
		Nodes:     p.Stats().Nodes,
		Root:      root,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func fromMongo(d mongoProject) (*project.Project, error) {
	p := &project.Project{
		ID:        d.ID,
		Name:      d.Name,
		Location:  d.Location,
		Format:    document.Format(d.Format),
		Checksum:  d.Checksum,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if len(d.Root) > 0 {
		var root node.Node
		if err := json.Unmarshal(d.Root, &root); err != nil {
			return nil, fmt.Errorf("parse tree of %s: %w", d.ID, err)
		}
		p.Root = &root
	}
	return p, nil
}

func (d mongoProject) summary() Summary {
	return Summary{
		ID:        d.ID,
		Name:      d.Name,
		Location:  d.Location,
		Format:    document.Format(d.Format),
		Nodes:     d.Nodes,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (s *MongoStore) Save(ctx context.Context, p *project.Project) error {
	if p == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil project")
	}
	if err := errors.ValidateProjectID(p.ID); err != nil {
		return err
	}
	doc, err := toMongo(p)
	if err != nil {
		return err
	}
	_, err = s.projects.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, id string) (*project.Project, error) {
	var doc mongoProject
	err := s.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return fromMongo(doc)
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetProjection(bson.M{"root": 0})
	cur, err := s.projects.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var docs []mongoProject
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	current, err := s.currentID(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(docs))
	for _, d := range docs {
		sum := d.summary()
		sum.Current = d.ID == current
		out = append(out, sum)
	}
	sortSummaries(out)
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	_, err = s.meta.DeleteOne(ctx, bson.M{"_id": currentFile, "project_id": id})
	if err != nil {
		return fmt.Errorf("clear current project: %w", err)
	}
	return nil
}

func (s *MongoStore) SetCurrent(ctx context.Context, id string) error {
	if id == "" {
		if _, err := s.meta.DeleteOne(ctx, bson.M{"_id": currentFile}); err != nil {
			return fmt.Errorf("clear current project: %w", err)
		}
		return nil
	}
	n, err := s.projects.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	doc := mongoCurrent{ID: currentFile, ProjectID: id}
	_, err = s.meta.ReplaceOne(ctx, bson.M{"_id": currentFile}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set current project: %w", err)
	}
	return nil
}

func (s *MongoStore) Current(ctx context.Context) (*project.Project, error) {
	id, err := s.currentID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, noCurrent()
	}
	p, err := s.Load(ctx, id)
	if errors.Is(err, errors.ErrCodeProjectNotFound) {
		return nil, noCurrent()
	}
	return p, err
}

func (s *MongoStore) currentID(ctx context.Context) (string, error) {
	var doc mongoCurrent
	err := s.meta.FindOne(ctx, bson.M{"_id": currentFile}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read current project: %w", err)
	}
	return doc.ProjectID, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
