package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// NotificationDeduper tracks gateway notifications already handled, so a
// redelivered callback does not record the same payment twice.
type NotificationDeduper interface {
	Seen(ctx context.Context, key string) (bool, error)
}

type redisNotificationDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisNotificationDeduper) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+":"+key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => already exists => duplicate
	return !ok, nil
}

type memoryNotificationDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryNotificationDeduper(ttl time.Duration) *memoryNotificationDeduper {
	now := time.Now()
	return &memoryNotificationDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (d *memoryNotificationDeduper) Seen(_ context.Context, key string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[key]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

// NewNotificationDeduper builds a Redis deduper and falls back to
// in-memory on failure.
func NewNotificationDeduper(addr, pass string, db int, ttl time.Duration) (NotificationDeduper, error) {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	if addr == "" {
		return newMemoryNotificationDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryNotificationDeduper(ttl), err
	}

	return &redisNotificationDeduper{
		client: client,
		prefix: "gw:notification",
		ttl:    ttl,
	}, nil
}

// notificationFingerprint identifies one notification delivery. Moip
// sends one NASP post per status change and they all share the provider
// transaction id, so the status is part of the fingerprint: a paid
// notification must not dedup against the earlier boleto-printed one.
// PagSeguro issues a fresh notificationCode per delivery.
func notificationFingerprint(gateway string, form url.Values) string {
	if v := form.Get("cod_moip"); v != "" {
		return gateway + ":" + v + ":" + form.Get("status_pagamento")
	}
	if v := form.Get("notificationCode"); v != "" {
		return gateway + ":" + v
	}
	if v := form.Get("id_transacao"); v != "" {
		return gateway + ":" + v + ":" + form.Get("status_pagamento")
	}
	return ""
}

// CallbackDedup drops duplicate gateway notifications. Gateways only need
// a 2xx response to stop redelivering.
func CallbackDedup(deduper NotificationDeduper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}

			req := c.Request()
			if req.Body == nil {
				return next(c)
			}

			rawBody, err := io.ReadAll(req.Body)
			if err != nil {
				return next(c)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(rawBody))
			if len(rawBody) == 0 {
				return next(c)
			}

			form, err := url.ParseQuery(string(rawBody))
			if err != nil {
				return next(c)
			}

			key := notificationFingerprint(c.Param("gateway"), form)
			if key == "" {
				return next(c)
			}

			isDuplicate, err := deduper.Seen(req.Context(), key)
			if err != nil {
				return next(c)
			}
			if isDuplicate {
				return c.NoContent(http.StatusOK)
			}

			return next(c)
		}
	}
}
