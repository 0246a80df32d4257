package content

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"seasonal-cms/internal/domain"
)

// fakeRepo 按插入顺序保存的内存实现，key 唯一约束和真实后端一致
type fakeRepo struct {
	mu   sync.Mutex
	rows []domain.Content
}

func (f *fakeRepo) List(context.Context) ([]domain.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Content, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*domain.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			c := f.rows[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) FindByKey(_ context.Context, key string) (*domain.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].Key == key {
			c := f.rows[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Insert(_ context.Context, c *domain.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].Key == c.Key {
			return fmt.Errorf("UNIQUE constraint failed: contents.key")
		}
	}
	f.rows = append(f.rows, *c)
	return nil
}

func (f *fakeRepo) Update(_ context.Context, c *domain.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == c.ID {
			f.rows[i].Key = c.Key
			f.rows[i].Value = c.Value
			f.rows[i].Type = c.Type
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRepo) DeleteByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRepo) ReplaceAll(_ context.Context, rows []domain.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append([]domain.Content(nil), rows...)
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	return NewService(repo, zap.NewNop()), repo
}

func TestUpsert_ByKey_NeverDuplicates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Upsert(ctx, "", "hero.summer", fmt.Sprintf("v%d", i), "json")
		require.NoError(t, err)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "hero.summer", all[0].Key)
	assert.Equal(t, "v4", all[0].Value)
	assert.Equal(t, "json", all[0].Type)
}

func TestUpsert_ByKey_InsertsWhenAbsent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, "", "contact", `{"email":"x@y.z"}`, "json")
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, "contact", rec.Key)
}

func TestUpsert_IDTakesPrecedenceOverKey(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	orig, err := svc.Upsert(ctx, "", "hero.summer", "old", "text")
	require.NoError(t, err)

	// 带 id 的调用换 key，应当改同一行，而不是新建
	upd, err := svc.Upsert(ctx, orig.ID, "hero.winter", "new", "html")
	require.NoError(t, err)
	assert.Equal(t, orig.ID, upd.ID)
	assert.Equal(t, "hero.winter", upd.Key)
	assert.Equal(t, "new", upd.Value)
	assert.Equal(t, "html", upd.Type)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsert_UnknownIDFails(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Upsert(context.Background(), "no-such-id", "k", "v", "text")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsert_ByKey_KeepsKeyOnUpdate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "", "testimonials", "[1]", "json")
	require.NoError(t, err)

	second, err := svc.Upsert(ctx, "", "testimonials", "[1,2]", "json")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "testimonials", second.Key)
	assert.Equal(t, "[1,2]", second.Value)
}

func TestUpsert_ConcurrentSameKey_SingleRow(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Upsert(ctx, "", "services.winter", fmt.Sprintf("v%d", i), "json")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetByKey_MissingIsNilNotError(t *testing.T) {
	svc, _ := newTestService()

	rec, err := svc.GetByKey(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDelete_Idempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, "", "portfolio.summer", "[]", "json")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rec.ID))
	require.NoError(t, svc.Delete(ctx, rec.ID)) // 第二次是 no-op

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestResetWithSeed_ExactSections(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// 先留点旧数据，确认会被清掉
	_, err := svc.Upsert(ctx, "", "stale", "x", "text")
	require.NoError(t, err)

	seed := Seed{
		Testimonials:    json.RawMessage(`[{"who":"A","text":"great"}]`),
		HeroSummer:      json.RawMessage(`{"title":"Lush lawns"}`),
		HeroWinter:      json.RawMessage(`{"title":"Snow gone by dawn"}`),
		ServicesSummer:  json.RawMessage(`["mowing","edging"]`),
		ServicesWinter:  json.RawMessage(`["plowing","salting"]`),
		PortfolioSummer: json.RawMessage(`[]`),
		PortfolioWinter: json.RawMessage(`[]`),
		Contact:         json.RawMessage(`{"email":"info@acme.test"}`),
	}
	require.NoError(t, svc.ResetWithSeed(ctx, seed))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 8)

	byKey := map[string]domain.Content{}
	for _, c := range all {
		byKey[c.Key] = c
	}
	wantKeys := []string{
		"testimonials",
		"hero.summer", "hero.winter",
		"services.summer", "services.winter",
		"portfolio.summer", "portfolio.winter",
		"contact",
	}
	for _, k := range wantKeys {
		rec, ok := byKey[k]
		require.True(t, ok, "missing section %s", k)
		assert.Equal(t, "json", rec.Type)
		assert.True(t, json.Valid([]byte(rec.Value)), "section %s not valid json", k)
	}
	assert.NotContains(t, byKey, "stale")
	assert.JSONEq(t, `{"email":"info@acme.test"}`, byKey["contact"].Value)
	assert.JSONEq(t, `["plowing","salting"]`, byKey["services.winter"].Value)
}
