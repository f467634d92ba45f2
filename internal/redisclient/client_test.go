package redisclient

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return &Client{rdb: rdb, baseTTL: 15 * time.Minute}, mr
}

func TestGetJSON_CacheMiss(t *testing.T) {
	client, _ := setupTestClient(t)

	var dest testPayload
	err := client.GetJSON(context.Background(), ProductKey(999), &dest)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetGetRoundtrip(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	payload := testPayload{ID: 1, Name: "Blue Mug", Stock: 5}
	require.NoError(t, client.SetJSON(ctx, ProductKey(1), payload))

	var dest testPayload
	require.NoError(t, client.GetJSON(ctx, ProductKey(1), &dest))
	assert.Equal(t, payload, dest)
}

func TestGetJSON_InvalidPayload(t *testing.T) {
	client, mr := setupTestClient(t)

	require.NoError(t, mr.Set(ProductKey(2), "{not json"))

	var dest testPayload
	err := client.GetJSON(context.Background(), ProductKey(2), &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestSetJSON_TTLWithinJitterWindow(t *testing.T) {
	client, mr := setupTestClient(t)

	require.NoError(t, client.SetJSON(context.Background(), CartKey(7), testPayload{ID: 7}))

	ttl := mr.TTL(CartKey(7))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 16*time.Minute)
}

func TestDelete(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx := context.Background()

	data, _ := json.Marshal(testPayload{ID: 3})
	require.NoError(t, mr.Set(ProductKey(3), string(data)))
	require.NoError(t, mr.Set(CartKey(3), string(data)))

	require.NoError(t, client.Delete(ctx, ProductKey(3), CartKey(3)))
	assert.False(t, mr.Exists(ProductKey(3)))
	assert.False(t, mr.Exists(CartKey(3)))
}

func TestDelete_NoKeys(t *testing.T) {
	client, _ := setupTestClient(t)
	assert.NoError(t, client.Delete(context.Background()))
}

func TestKeyFormats(t *testing.T) {
	assert.Equal(t, "product:42", ProductKey(42))
	assert.Equal(t, "cart:17", CartKey(17))
}
