package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clearplot/internal/domain"
)

type stubDecoder map[string]string

func (d stubDecoder) Decode(token string) (string, error) {
	id, ok := d[token]
	if !ok {
		return "", errors.New("bad token")
	}
	return id, nil
}

func TestProfile(t *testing.T) {
	users := new(MockUserRepository)
	props := new(MockPropertyRepository)
	userSvc := NewUserService(users, new(MockTokenIssuer), nil)
	propSvc := NewPropertyService(PropertyDeps{Properties: props, Images: new(MockImageStore)})
	svc := NewProfileService(stubDecoder{"tok": "u1"}, userSvc, propSvc)

	users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Name: "Asha", PasswordHash: "h"}, nil)
	props.On("ListByOwner", mock.Anything, "u1").Return([]domain.Property{{ID: "p1", OwnerID: "u1"}}, nil)

	ctx := context.Background()

	owner, err := svc.Profile(ctx, "tok", "u1")
	require.NoError(t, err)
	assert.True(t, owner.CanEdit)
	assert.Equal(t, "Asha", owner.User.Name)
	assert.Empty(t, owner.User.PasswordHash)
	assert.Len(t, owner.Properties, 1)

	visitor, err := svc.Profile(ctx, "tok", "u2")
	require.NoError(t, err)
	assert.False(t, visitor.CanEdit)

	anonymous, err := svc.Profile(ctx, "tok", "")
	require.NoError(t, err)
	assert.False(t, anonymous.CanEdit)

	_, err = svc.Profile(ctx, "forged", "u1")
	assert.ErrorIs(t, err, ErrInvalidProfileToken)
}
