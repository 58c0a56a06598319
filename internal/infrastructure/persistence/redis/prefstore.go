// Package redis implements the Redis-backed preference store. The dashboard
// keeps only small per-session values here: the active role indicator, the
// widget layout, and a last-seen marker. The correctness bar is round-tripping
// the most recently written value.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int
	MaxRetries   int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrMiss is returned when the requested key is not set.
	ErrMiss = errors.New("prefstore: key not found")

	// ErrConnection is returned when the Redis connection fails.
	ErrConnection = errors.New("prefstore: connection failed")

	// ErrKeyEmpty is returned when an empty session id is provided.
	ErrKeyEmpty = errors.New("prefstore: session id cannot be empty")
)

// Key layout. Preferences survive restarts; the seen marker expires so idle
// sessions age out.
const (
	prefixPreference = "pref:"
	prefixSession    = "session:"

	fieldRole   = "role"
	fieldLayout = "layout"

	// TTLSessionMarker bounds how long an idle session stays visible.
	TTLSessionMarker = 24 * time.Hour
)

func roleKey(sessionID string) string {
	return prefixPreference + sessionID + ":" + fieldRole
}

func layoutKey(sessionID string) string {
	return prefixPreference + sessionID + ":" + fieldLayout
}

func seenKey(sessionID string) string {
	return prefixSession + sessionID + ":seen"
}

// ══════════════════════════════════════════════════════════════════════════════
// PREFERENCE STORE
// ══════════════════════════════════════════════════════════════════════════════

// PreferenceStore persists session preferences in Redis.
type PreferenceStore struct {
	client *redis.Client
	config Config
}

// NewPreferenceStore connects to Redis and verifies the connection.
func NewPreferenceStore(cfg Config) (*PreferenceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return &PreferenceStore{client: client, config: cfg}, nil
}

// Client returns the underlying Redis client for advanced operations.
func (s *PreferenceStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *PreferenceStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *PreferenceStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetRole returns the persisted role indicator, or "" when unset.
func (s *PreferenceStore) GetRole(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrKeyEmpty
	}
	val, err := s.client.Get(ctx, roleKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// SetRole persists the role indicator. No TTL: the choice survives restarts.
func (s *PreferenceStore) SetRole(ctx context.Context, sessionID, role string) error {
	if sessionID == "" {
		return ErrKeyEmpty
	}
	return s.client.Set(ctx, roleKey(sessionID), role, 0).Err()
}

// GetWidgetLayout returns the persisted widget order, or nil when unset.
func (s *PreferenceStore) GetWidgetLayout(ctx context.Context, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, ErrKeyEmpty
	}
	data, err := s.client.Get(ctx, layoutKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var layout []string
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("prefstore: decode layout: %w", err)
	}
	return layout, nil
}

// SetWidgetLayout persists the widget order.
func (s *PreferenceStore) SetWidgetLayout(ctx context.Context, sessionID string, layout []string) error {
	if sessionID == "" {
		return ErrKeyEmpty
	}
	data, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("prefstore: encode layout: %w", err)
	}
	return s.client.Set(ctx, layoutKey(sessionID), data, 0).Err()
}

// Touch refreshes the session's last-seen marker.
func (s *PreferenceStore) Touch(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrKeyEmpty
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return s.client.Set(ctx, seenKey(sessionID), now, TTLSessionMarker).Err()
}

// LastSeen returns the session's last-seen time. ErrMiss when the marker has
// expired or was never set.
func (s *PreferenceStore) LastSeen(ctx context.Context, sessionID string) (time.Time, error) {
	if sessionID == "" {
		return time.Time{}, ErrKeyEmpty
	}
	val, err := s.client.Get(ctx, seenKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, ErrMiss
		}
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("prefstore: decode seen marker: %w", err)
	}
	return ts, nil
}
