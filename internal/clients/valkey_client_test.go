package clients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/emotionflow/internal/labels"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ValkeyCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	require.NoError(t, err)

	cache := NewValkeyCache(client, ttl)
	t.Cleanup(cache.Close)
	return cache, mr
}

func TestValkeyCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "v1:abc")
	assert.False(t, ok)

	cache.Set(ctx, "v1:abc", labels.Prediction{Label: "joy", Confidence: 0.75})

	pred, ok := cache.Get(ctx, "v1:abc")
	require.True(t, ok)
	assert.Equal(t, labels.Prediction{Label: "joy", Confidence: 0.75}, pred)

	assert.True(t, mr.Exists(VALKEY_PREDICTION_PREFIX+"v1:abc"))
	assert.Equal(t, time.Minute, mr.TTL(VALKEY_PREDICTION_PREFIX+"v1:abc"))
}

func TestValkeyCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	cache.Set(ctx, "k", labels.Prediction{Label: "fear", Confidence: 0.4})
	mr.FastForward(2 * time.Second)

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestValkeyCacheWithoutTTL(t *testing.T) {
	cache, mr := newTestCache(t, 0)

	cache.Set(context.Background(), "k", labels.Prediction{Label: "love", Confidence: 1})
	assert.Equal(t, time.Duration(0), mr.TTL(VALKEY_PREDICTION_PREFIX+"k"))
}

func TestValkeyCacheIgnoresCorruptEntries(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(VALKEY_PREDICTION_PREFIX+"bad", "not json"))

	_, ok := cache.Get(context.Background(), "bad")
	assert.False(t, ok)
}

func TestNewValkeyFailsWithoutServer(t *testing.T) {
	_, err := NewValkey(ValkeyOptions{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE Operation")))
}
