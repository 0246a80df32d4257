package settings

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"seasonal-cms/internal/domain"
	"seasonal-cms/internal/feature/content"
)

type memContentRepo struct {
	mu   sync.Mutex
	rows []domain.Content
}

func (m *memContentRepo) List(context.Context) ([]domain.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Content, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memContentRepo) FindByID(_ context.Context, id string) (*domain.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			c := m.rows[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memContentRepo) FindByKey(_ context.Context, key string) (*domain.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].Key == key {
			c := m.rows[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memContentRepo) Insert(_ context.Context, c *domain.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].Key == c.Key {
			return fmt.Errorf("UNIQUE constraint failed: contents.key")
		}
	}
	m.rows = append(m.rows, *c)
	return nil
}

func (m *memContentRepo) Update(_ context.Context, c *domain.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == c.ID {
			m.rows[i] = *c
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memContentRepo) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memContentRepo) ReplaceAll(_ context.Context, rows []domain.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]domain.Content(nil), rows...)
	return nil
}

func newFallback() (*ContentFallback, *content.Service) {
	c := content.NewService(&memContentRepo{}, zap.NewNop())
	return NewContentFallback(c), c
}

func TestFallback_UnsupportedKey(t *testing.T) {
	f, _ := newFallback()

	_, err := f.Upsert(context.Background(), "ANALYTICS_ID", `"UA-1"`)
	assert.ErrorIs(t, err, domain.ErrUnsupportedSettingKey)
}

func TestFallback_SiteNameRoundTrip(t *testing.T) {
	f, _ := newFallback()
	ctx := context.Background()

	set, err := f.Upsert(ctx, domain.SettingSiteName, `"Acme Lawn Care"`)
	require.NoError(t, err)
	assert.Equal(t, domain.SettingSiteName, set.Key)

	all, err := f.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.SettingSiteName, all[0].Key)
	assert.Equal(t, `"Acme Lawn Care"`, all[0].Value)
}

func TestFallback_UserEmailProjectsOntoContact(t *testing.T) {
	f, c := newFallback()
	ctx := context.Background()

	// 内容行已有其它字段，改设置不能丢
	_, err := c.Upsert(ctx, "", "contact", `{"phone":"555-0100","email":"old@x.y"}`, "json")
	require.NoError(t, err)

	_, err = f.Upsert(ctx, domain.SettingUserEmail, `"new@x.y"`)
	require.NoError(t, err)

	row, err := c.GetByKey(ctx, "contact")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.JSONEq(t, `{"phone":"555-0100","email":"new@x.y"}`, row.Value)

	all, err := f.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, `"new@x.y"`, all[0].Value)
}

func TestFallback_EmptyStoreListsNothing(t *testing.T) {
	f, _ := newFallback()

	all, err := f.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFallback_RejectsInvalidJSONValue(t *testing.T) {
	f, _ := newFallback()

	_, err := f.Upsert(context.Background(), domain.SettingSiteName, "not-json")
	assert.Error(t, err)
}

func TestService_ValidatesJSON(t *testing.T) {
	svc := NewService(newFallbackStore(t))

	_, err := svc.Upsert(context.Background(), domain.SettingSiteName, "{broken")
	assert.Error(t, err)
}

func TestService_DelegatesToStore(t *testing.T) {
	svc := NewService(newFallbackStore(t))
	ctx := context.Background()

	_, err := svc.Upsert(ctx, domain.SettingSiteName, `"Acme"`)
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, `"Acme"`, all[0].Value)
}

func newFallbackStore(t *testing.T) domain.SettingsStore {
	t.Helper()
	f, _ := newFallback()
	return f
}
