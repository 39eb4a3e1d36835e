package service

import (
	"context"
	"errors"

	"clearplot/internal/domain"
)

// ErrInvalidProfileToken is returned when a profile link does not carry a token we signed.
var ErrInvalidProfileToken = errors.New("Invalid profile token")

// TokenDecoder extracts the user id from a token, ignoring its expiry.
type TokenDecoder interface {
	Decode(token string) (string, error)
}

// Profile is the public view of a user together with their listings.
type Profile struct {
	User       *domain.User
	Properties []domain.Property
	CanEdit    bool
}

// ProfileService assembles shareable profile pages.
type ProfileService interface {
	Profile(ctx context.Context, profileToken, viewerID string) (*Profile, error)
}

type profileService struct {
	tokens TokenDecoder
	users  UserService
	props  PropertyService
}

func NewProfileService(tokens TokenDecoder, users UserService, props PropertyService) ProfileService {
	return &profileService{tokens: tokens, users: users, props: props}
}

// Profile decodes the user id out of profileToken. CanEdit is advisory: it is
// true when the viewer is the profile owner.
func (s *profileService) Profile(ctx context.Context, profileToken, viewerID string) (*Profile, error) {
	userID, err := s.tokens.Decode(profileToken)
	if err != nil {
		return nil, ErrInvalidProfileToken
	}

	user, err := s.users.GetPublic(ctx, userID)
	if err != nil {
		return nil, err
	}
	props, err := s.props.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:       user,
		Properties: props,
		CanEdit:    viewerID != "" && viewerID == userID,
	}, nil
}
