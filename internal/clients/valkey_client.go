package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/emotionflow/internal/labels"
)

const (
	VALKEY_PREDICTION_PREFIX = "emotion:prediction:"
	VALKEY_RETRIES           = 3
	VALKEY_RETRY_DELAY       = 250 * time.Millisecond
)

type ValkeyOptions struct {
	Address  string
	Password string
	TLS      bool
}

// NewValkey connects and pings the server.
func NewValkey(opts ValkeyOptions) (valkey.Client, error) {
	clientOpts := valkey.ClientOption{
		InitAddress:      []string{opts.Address},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if opts.TLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", opts.Address))
	return client, nil
}

// ValkeyCache shares predictions between replicas. Entries expire after ttl;
// a zero ttl keeps them until evicted.
type ValkeyCache struct {
	Client valkey.Client
	ttl    time.Duration
}

func NewValkeyCache(client valkey.Client, ttl time.Duration) *ValkeyCache {
	return &ValkeyCache{Client: client, ttl: ttl}
}

func (vc *ValkeyCache) Get(ctx context.Context, key string) (labels.Prediction, bool) {
	res := vc.DoWithRetry(ctx, vc.Client.B().Get().Key(VALKEY_PREDICTION_PREFIX+key).Build().Pin(), VALKEY_RETRIES)

	raw, err := res.AsBytes()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("[ValkeyClient] Lookup failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return labels.Prediction{}, false
	}

	var pred labels.Prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		slog.Warn("[ValkeyClient] Discarding unreadable entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return labels.Prediction{}, false
	}
	return pred, true
}

func (vc *ValkeyCache) Set(ctx context.Context, key string, pred labels.Prediction) {
	raw, err := json.Marshal(pred)
	if err != nil {
		return
	}

	set := vc.Client.B().Set().Key(VALKEY_PREDICTION_PREFIX + key).Value(string(raw))
	var cmd valkey.Completed
	if seconds := int64(vc.ttl / time.Second); seconds > 0 {
		cmd = set.ExSeconds(seconds).Build().Pin()
	} else {
		cmd = set.Build().Pin()
	}

	if err := vc.DoWithRetry(ctx, cmd, VALKEY_RETRIES).Error(); err != nil {
		slog.Warn("[ValkeyClient] Store failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// DoWithRetry retries connection failures only. completed must be pinned.
func (vc *ValkeyCache) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if err := result.Error(); err == nil || valkey.IsValkeyNil(err) || !isConnectionError(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		select {
		case <-ctx.Done():
			return result
		case <-time.After(VALKEY_RETRY_DELAY):
		}
	}

	return result
}

func (vc *ValkeyCache) Close() {
	vc.Client.Close()
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
