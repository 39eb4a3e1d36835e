package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"clearplot/internal/domain"
	"clearplot/internal/repository"
)

const propertiesCollection = "properties"

type propertyDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"userId"`
	ListingType    string             `bson:"ListingType"`
	PropertyType   string             `bson:"PropertyType"`
	City           string             `bson:"City"`
	Furnishing     string             `bson:"Furnishing"`
	Facing         string             `bson:"Facing"`
	Area           float64            `bson:"Area"`
	Bedrooms       int                `bson:"Bedrooms"`
	Latitude       float64            `bson:"Latitude"`
	Longitude      float64            `bson:"Longitude"`
	Price          float64            `bson:"Price"`
	PredictedPrice float64            `bson:"PredictedPrice"`
	Description    string             `bson:"Description"`
	BinaryFeatures map[string]string  `bson:"BinaryFeatures"`
	Images         []string           `bson:"images"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d propertyDocument) toDomain() domain.Property {
	return domain.Property{
		ID:             d.ID.Hex(),
		OwnerID:        d.UserID.Hex(),
		ListingType:    domain.ListingType(d.ListingType),
		PropertyType:   d.PropertyType,
		City:           d.City,
		Furnishing:     d.Furnishing,
		Facing:         d.Facing,
		Area:           d.Area,
		Bedrooms:       d.Bedrooms,
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
		Price:          d.Price,
		PredictedPrice: d.PredictedPrice,
		Description:    d.Description,
		Amenities:      d.BinaryFeatures,
		Images:         d.Images,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// mutableFields is the $set document for an update; owner and creation time never change.
func mutableFields(p *domain.Property) bson.M {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return bson.M{
		"ListingType":    string(p.ListingType),
		"PropertyType":   p.PropertyType,
		"City":           p.City,
		"Furnishing":     p.Furnishing,
		"Facing":         p.Facing,
		"Area":           p.Area,
		"Bedrooms":       p.Bedrooms,
		"Latitude":       p.Latitude,
		"Longitude":      p.Longitude,
		"Price":          p.Price,
		"PredictedPrice": p.PredictedPrice,
		"Description":    p.Description,
		"BinaryFeatures": p.Amenities,
		"images":         images,
		"updatedAt":      p.UpdatedAt,
	}
}

type PropertyRepository struct {
	coll *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) repository.PropertyRepository {
	return &PropertyRepository{coll: db.Collection(propertiesCollection)}
}

func (r *PropertyRepository) Init(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create properties owner index: %w", err)
	}
	return nil
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	owner, err := primitive.ObjectIDFromHex(p.OwnerID)
	if err != nil {
		return fmt.Errorf("property owner %q: %w", p.OwnerID, err)
	}

	now := time.Now().UTC()
	images := p.Images
	if images == nil {
		images = []string{}
	}
	amenities := p.Amenities
	if amenities == nil {
		amenities = map[string]string{}
	}
	doc := propertyDocument{
		ID:             primitive.NewObjectID(),
		UserID:         owner,
		ListingType:    string(p.ListingType),
		PropertyType:   p.PropertyType,
		City:           p.City,
		Furnishing:     p.Furnishing,
		Facing:         p.Facing,
		Area:           p.Area,
		Bedrooms:       p.Bedrooms,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Price:          p.Price,
		PredictedPrice: p.PredictedPrice,
		Description:    p.Description,
		BinaryFeatures: amenities,
		Images:         images,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	p.ID = doc.ID.Hex()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": mutableFields(p)})
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) Get(ctx context.Context, id string) (*domain.Property, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc propertyDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find property: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []domain.Property{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"userId": owner}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list properties by owner: %w", err)
	}
	return decodeAll(ctx, cur)
}

func (r *PropertyRepository) Query(ctx context.Context, q repository.PropertyQuery) (*repository.PropertyPage, error) {
	filter := buildFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(q.Page.Offset())).
		SetLimit(int64(q.Page.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	items, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, err
	}
	return &repository.PropertyPage{Items: items, Total: total}, nil
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]domain.Property, error) {
	defer cur.Close(ctx)

	var docs []propertyDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	props := make([]domain.Property, 0, len(docs))
	for _, d := range docs {
		props = append(props, d.toDomain())
	}
	return props, nil
}
