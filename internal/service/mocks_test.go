package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"clearplot/internal/domain"
	"clearplot/internal/repository"
	"clearplot/internal/storage"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateName(ctx context.Context, id, name string) (*domain.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockPropertyRepository is a mock implementation of repository.PropertyRepository.
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPropertyRepository) Get(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

func (m *MockPropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Property), args.Error(1)
}

func (m *MockPropertyRepository) Query(ctx context.Context, q repository.PropertyQuery) (*repository.PropertyPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PropertyPage), args.Error(1)
}

// MockImageStore is a mock implementation of storage.Service.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Stage(ctx context.Context, name string, body io.Reader, contentType string) error {
	return m.Called(ctx, name, body, contentType).Error(0)
}

func (m *MockImageStore) Promote(ctx context.Context, names []string) error {
	return m.Called(ctx, names).Error(0)
}

func (m *MockImageStore) Discard(ctx context.Context, names []string) error {
	return m.Called(ctx, names).Error(0)
}

func (m *MockImageStore) Delete(ctx context.Context, names []string) error {
	return m.Called(ctx, names).Error(0)
}

func (m *MockImageStore) Resolve(ctx context.Context, name string) (storage.Object, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(storage.Object), args.Error(1)
}

func (m *MockImageStore) PurgeStaging(ctx context.Context, olderThan time.Duration) error {
	return m.Called(ctx, olderThan).Error(0)
}

// MockTokenIssuer is a mock implementation of TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

// MockPredictor is a mock implementation of PricePredictor.
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, features map[string]float64) (float64, error) {
	args := m.Called(ctx, features)
	return args.Get(0).(float64), args.Error(1)
}

// MockEnhancer is a mock implementation of DescriptionEnhancer.
type MockEnhancer struct {
	mock.Mock
}

func (m *MockEnhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// memCache is an in-process Cache used to observe caching behaviour.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst any) bool {
	raw, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *memCache) SetJSON(_ context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err == nil {
		c.entries[key] = raw
	}
}

func (c *memCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(c.entries, k)
	}
}

func (c *memCache) has(key string) bool {
	_, ok := c.entries[key]
	return ok
}
