package mongo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"clearplot/internal/domain"
	"clearplot/internal/listing"
	"clearplot/internal/repository"
)

func setupMongoContainer(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("mongo container tests are skipped in -short mode")
	}

	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := Connect(ctx, fmt.Sprintf("mongodb://%s:%d", host, port.Int()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return client.Database("clearplot_test")
}

func TestMongoRepositories(t *testing.T) {
	db := setupMongoContainer(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	props := NewPropertyRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, props.Init(ctx))

	alice := &domain.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"}
	bob := &domain.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))
	assert.ErrorIs(t, users.Create(ctx, &domain.User{Name: "A2", Email: "alice@example.com"}), repository.ErrDuplicateEmail)

	renamed, err := users.UpdateName(ctx, alice.ID, "Alice B")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", renamed.Name)

	_, err = users.GetByID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	rent := &domain.Property{
		OwnerID: alice.ID, ListingType: domain.ListingTypeRent, PropertyType: "Apartment", City: "Pune",
		Area: 800, Bedrooms: 2, Price: 20000, PredictedPrice: 6000,
		Amenities: map[string]string{"Gymnasium": "Yes"},
	}
	buy := &domain.Property{
		OwnerID: bob.ID, ListingType: domain.ListingTypeBuy, PropertyType: "Villa", City: "Pune",
		Area: 2000, Bedrooms: 4, Price: 9000000, PredictedPrice: 9000000,
	}
	require.NoError(t, props.Create(ctx, rent))
	require.NoError(t, props.Create(ctx, buy))

	page, err := props.Query(ctx, repository.PropertyQuery{
		Filter: listing.Filter{ListingType: domain.ListingTypeRent},
		Page:   listing.Page{Number: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, rent.ID, page.Items[0].ID)

	page, err = props.Query(ctx, repository.PropertyQuery{
		ExcludeOwner: alice.ID,
		Page:         listing.Page{Number: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, buy.ID, page.Items[0].ID)

	page, err = props.Query(ctx, repository.PropertyQuery{
		Filter: listing.Filter{Amenities: map[string]listing.AmenityState{"Gymnasium": listing.AmenityNo}},
		Page:   listing.Page{Number: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, buy.ID, page.Items[0].ID)

	rent.Images = []string{"images-1-x.png"}
	rent.Price = 25000
	require.NoError(t, props.Update(ctx, rent))
	got, err := props.Get(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, got.Price)
	assert.Equal(t, alice.ID, got.OwnerID)
	assert.Equal(t, []string{"images-1-x.png"}, got.Images)

	owned, err := props.ListByOwner(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	require.NoError(t, props.Delete(ctx, buy.ID))
	assert.ErrorIs(t, props.Delete(ctx, buy.ID), repository.ErrNotFound)
}
