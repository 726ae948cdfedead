package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

type countingPersister struct {
	fetches int
	records []leads.Lead
}

func (p *countingPersister) Fetch(ctx context.Context) ([]leads.Lead, error) {
	p.fetches++
	return p.records, nil
}

func (p *countingPersister) Create(ctx context.Context, lead *leads.Lead) (string, error) {
	return "id_1", nil
}

func (p *countingPersister) Update(ctx context.Context, id string, fields map[string]string) error {
	return nil
}

func (p *countingPersister) Delete(ctx context.Context, id string) error {
	return nil
}

func newTestCache(t *testing.T, inner leads.Persister) (leads.Persister, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return Wrap(inner, client, time.Minute, nil), mr
}

func TestFetchCachesSnapshot(t *testing.T) {
	inner := &countingPersister{records: []leads.Lead{{ID: "a", Status: leads.StatusScheduled}}}
	p, _ := newTestCache(t, inner)
	ctx := context.Background()

	first, err := p.Fetch(ctx)
	require.NoError(t, err)
	second, err := p.Fetch(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.fetches, "second fetch must come from cache")
	assert.Equal(t, first, second)
}

func TestTTLExpiryRefetches(t *testing.T) {
	inner := &countingPersister{}
	p, mr := newTestCache(t, inner)
	ctx := context.Background()

	_, err := p.Fetch(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = p.Fetch(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.fetches)
}

func TestMutationsInvalidate(t *testing.T) {
	inner := &countingPersister{}
	p, _ := newTestCache(t, inner)
	ctx := context.Background()

	_, err := p.Fetch(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Update(ctx, "a", map[string]string{leads.FieldNotes: "x"}))
	_, err = p.Fetch(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.fetches, "update must drop the cached snapshot")
}

func TestWrapNilClientReturnsInner(t *testing.T) {
	inner := &countingPersister{}
	assert.Equal(t, leads.Persister(inner), Wrap(inner, nil, 0, nil))
}
