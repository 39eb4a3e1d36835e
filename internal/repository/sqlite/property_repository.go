package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clearplot/internal/domain"
	"clearplot/internal/repository"
)

const createPropertiesTable = `
CREATE TABLE IF NOT EXISTS properties (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	listing_type TEXT NOT NULL,
	property_type TEXT NOT NULL,
	city TEXT NOT NULL,
	furnishing TEXT NOT NULL DEFAULT '',
	facing TEXT NOT NULL DEFAULT '',
	area REAL NOT NULL,
	bedrooms INTEGER NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	price REAL NOT NULL,
	predicted_price REAL NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	binary_features TEXT NOT NULL DEFAULT '{}',
	images TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const createPropertiesOwnerIndex = `CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties(owner_id);`

const propertyColumns = `id, owner_id, listing_type, property_type, city, furnishing, facing, area, bedrooms,
latitude, longitude, price, predicted_price, description, binary_features, images, created_at, updated_at`

type PropertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) repository.PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPropertiesTable); err != nil {
		return fmt.Errorf("create properties table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createPropertiesOwnerIndex); err != nil {
		return fmt.Errorf("create properties owner index: %w", err)
	}
	return nil
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	features, images, err := encodeCollections(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO properties (`+propertyColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OwnerID,
		string(p.ListingType),
		p.PropertyType,
		p.City,
		p.Furnishing,
		p.Facing,
		p.Area,
		p.Bedrooms,
		p.Latitude,
		p.Longitude,
		p.Price,
		p.PredictedPrice,
		p.Description,
		features,
		images,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	p.UpdatedAt = time.Now().UTC()

	features, images, err := encodeCollections(p)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE properties
SET listing_type=?, property_type=?, city=?, furnishing=?, facing=?, area=?, bedrooms=?,
	latitude=?, longitude=?, price=?, predicted_price=?, description=?, binary_features=?, images=?, updated_at=?
WHERE id=?`,
		string(p.ListingType),
		p.PropertyType,
		p.City,
		p.Furnishing,
		p.Facing,
		p.Area,
		p.Bedrooms,
		p.Latitude,
		p.Longitude,
		p.Price,
		p.PredictedPrice,
		p.Description,
		features,
		images,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	return expectOneRow(res, "property update")
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return expectOneRow(res, "property delete")
}

func (r *PropertyRepository) Get(ctx context.Context, id string) (*domain.Property, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)
	p, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+propertyColumns+`
FROM properties
WHERE owner_id = ?
ORDER BY rowid`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list properties by owner: %w", err)
	}
	return collectProperties(rows)
}

func (r *PropertyRepository) Query(ctx context.Context, q repository.PropertyQuery) (*repository.PropertyPage, error) {
	where, args := buildWhere(q)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}

	pageArgs := append(append([]any{}, args...), q.Page.Limit, q.Page.Offset())
	rows, err := r.db.QueryContext(ctx, `
SELECT `+propertyColumns+`
FROM properties`+where+`
ORDER BY rowid
LIMIT ? OFFSET ?`,
		pageArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	items, err := collectProperties(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PropertyPage{Items: items, Total: total}, nil
}

// buildWhere renders the query predicates as a WHERE clause. Amenities are
// read out of the binary_features JSON document; a missing key counts as "No".
func buildWhere(q repository.PropertyQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		clauses = append(clauses, clause)
		args = append(args, arg)
	}

	f := q.Filter
	if q.ExcludeOwner != "" {
		add("owner_id != ?", q.ExcludeOwner)
	}
	if f.City != "" {
		add("city = ?", f.City)
	}
	if f.PropertyType != "" {
		add("property_type = ?", f.PropertyType)
	}
	if f.ListingType != "" {
		add("listing_type = ?", string(f.ListingType))
	}
	if f.MinPrice != nil {
		add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= ?", *f.MaxPrice)
	}
	if f.MinArea != nil {
		add("area >= ?", *f.MinArea)
	}
	if f.MaxArea != nil {
		add("area <= ?", *f.MaxArea)
	}

	yes, no := f.AmenityPredicates()
	for _, name := range yes {
		add("json_extract(binary_features, ?) = 'Yes'", amenityPath(name))
	}
	for _, name := range no {
		add("COALESCE(json_extract(binary_features, ?), '') != 'Yes'", amenityPath(name))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(clauses, " AND "), args
}

func amenityPath(name string) string {
	return `$."` + name + `"`
}

func encodeCollections(p *domain.Property) (string, string, error) {
	amenities := p.Amenities
	if amenities == nil {
		amenities = map[string]string{}
	}
	features, err := json.Marshal(amenities)
	if err != nil {
		return "", "", fmt.Errorf("encode binary features: %w", err)
	}
	imgs := p.Images
	if imgs == nil {
		imgs = []string{}
	}
	images, err := json.Marshal(imgs)
	if err != nil {
		return "", "", fmt.Errorf("encode images: %w", err)
	}
	return string(features), string(images), nil
}

func expectOneRow(res sql.Result, op string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func collectProperties(rows *sql.Rows) ([]domain.Property, error) {
	defer rows.Close()

	props := make([]domain.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return props, nil
}

func scanProperty(row interface {
	Scan(dest ...any) error
}) (*domain.Property, error) {
	var (
		p           domain.Property
		listingType string
		features    string
		images      string
	)
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&listingType,
		&p.PropertyType,
		&p.City,
		&p.Furnishing,
		&p.Facing,
		&p.Area,
		&p.Bedrooms,
		&p.Latitude,
		&p.Longitude,
		&p.Price,
		&p.PredictedPrice,
		&p.Description,
		&features,
		&images,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan property: %w", err)
	}
	p.ListingType = domain.ListingType(listingType)
	if err := json.Unmarshal([]byte(features), &p.Amenities); err != nil {
		return nil, fmt.Errorf("decode binary features: %w", err)
	}
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return &p, nil
}
