package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clearplot/internal/domain"
	"clearplot/internal/listing"
	"clearplot/internal/repository"
)

func openTestDB(t *testing.T) (repository.UserRepository, repository.PropertyRepository) {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "clearplot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := NewUserRepository(db)
	props := NewPropertyRepository(db)
	require.NoError(t, users.Init(context.Background()))
	require.NoError(t, props.Init(context.Background()))
	return users, props
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users, _ := openTestDB(t)

	u := &domain.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	dup := &domain.User{Name: "Other", Email: "asha@example.com", PasswordHash: "hash"}
	assert.ErrorIs(t, users.Create(ctx, dup), repository.ErrDuplicateEmail)

	got, err := users.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	renamed, err := users.UpdateName(ctx, u.ID, "Asha K")
	require.NoError(t, err)
	assert.Equal(t, "Asha K", renamed.Name)
	assert.Equal(t, "asha@example.com", renamed.Email)

	_, err = users.UpdateName(ctx, "missing", "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func newProperty(owner, city string, lt domain.ListingType, price float64, amenities map[string]string) *domain.Property {
	return &domain.Property{
		OwnerID:        owner,
		ListingType:    lt,
		PropertyType:   "Apartment",
		City:           city,
		Area:           1000,
		Bedrooms:       2,
		Latitude:       19.07,
		Longitude:      72.87,
		Price:          price,
		PredictedPrice: domain.FallbackPredictedPrice(lt, price),
		Amenities:      amenities,
		Images:         []string{"images-1-a.jpg"},
	}
}

func TestPropertyRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	_, props := openTestDB(t)

	p := newProperty("owner-1", "Pune", domain.ListingTypeBuy, 1000000, map[string]string{"Gymnasium": "Yes"})
	require.NoError(t, props.Create(ctx, p))
	require.NotEmpty(t, p.ID)

	got, err := props.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pune", got.City)
	assert.Equal(t, domain.ListingTypeBuy, got.ListingType)
	assert.Equal(t, map[string]string{"Gymnasium": "Yes"}, got.Amenities)
	assert.Equal(t, []string{"images-1-a.jpg"}, got.Images)

	got.City = "Mumbai"
	got.Images = []string{}
	require.NoError(t, props.Update(ctx, got))

	again, err := props.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", again.City)
	assert.Empty(t, again.Images)

	owned, err := props.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	require.NoError(t, props.Delete(ctx, p.ID))
	_, err = props.Get(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, props.Delete(ctx, p.ID), repository.ErrNotFound)
}

func TestPropertyRepositoryQuery(t *testing.T) {
	ctx := context.Background()
	_, props := openTestDB(t)

	seed := []*domain.Property{
		newProperty("u1", "Pune", domain.ListingTypeBuy, 1000000, map[string]string{"Gymnasium": "Yes"}),
		newProperty("u2", "Pune", domain.ListingTypeRent, 20000, map[string]string{"Gymnasium": "No"}),
		newProperty("u2", "Mumbai", domain.ListingTypeBuy, 5000000, nil),
		newProperty("u3", "Pune", domain.ListingTypeBuy, 3000000, map[string]string{"Gymnasium": "Yes", "AC": "Yes"}),
	}
	for _, p := range seed {
		require.NoError(t, props.Create(ctx, p))
	}
	firstPage := listing.Page{Number: 1, Limit: 10}

	t.Run("listing type", func(t *testing.T) {
		page, err := props.Query(ctx, repository.PropertyQuery{
			Filter: listing.Filter{ListingType: domain.ListingTypeRent},
			Page:   firstPage,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, seed[1].ID, page.Items[0].ID)
	})

	t.Run("excludes caller listings", func(t *testing.T) {
		page, err := props.Query(ctx, repository.PropertyQuery{ExcludeOwner: "u2", Page: firstPage})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
		for _, p := range page.Items {
			assert.NotEqual(t, "u2", p.OwnerID)
		}
	})

	t.Run("amenity yes and price range", func(t *testing.T) {
		minPrice := 2000000.0
		page, err := props.Query(ctx, repository.PropertyQuery{
			Filter: listing.Filter{
				MinPrice:  &minPrice,
				Amenities: map[string]listing.AmenityState{"Gymnasium": listing.AmenityYes},
			},
			Page: firstPage,
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, seed[3].ID, page.Items[0].ID)
	})

	t.Run("amenity no includes missing", func(t *testing.T) {
		page, err := props.Query(ctx, repository.PropertyQuery{
			Filter: listing.Filter{Amenities: map[string]listing.AmenityState{"Gymnasium": listing.AmenityNo}},
			Page:   firstPage,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
	})

	t.Run("pagination keeps insertion order", func(t *testing.T) {
		page, err := props.Query(ctx, repository.PropertyQuery{Page: listing.Page{Number: 2, Limit: 3}})
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, seed[3].ID, page.Items[0].ID)
	})

	t.Run("matches in-memory filter", func(t *testing.T) {
		f := listing.Filter{City: "Pune", Amenities: map[string]listing.AmenityState{"AC": listing.AmenityNo}}
		page, err := props.Query(ctx, repository.PropertyQuery{Filter: f, Page: firstPage})
		require.NoError(t, err)

		all := make([]domain.Property, 0, len(seed))
		for _, p := range seed {
			all = append(all, *p)
		}
		want := f.Apply(all)
		require.Len(t, page.Items, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, page.Items[i].ID)
		}
	})
}
