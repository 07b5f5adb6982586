// Package directory serves user and candidate profile reads through the cache.
package directory

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/blob"
	"github.com/matheus3301/jobboard/internal/cache"
	"github.com/matheus3301/jobboard/internal/metrics"
	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

// Directory is a read-through cache over the users and candidateProfiles
// collections. Writes go to the store and invalidate the cached copy.
type Directory struct {
	db     *store.DB
	cache  cache.Cache
	blobs  blob.Storage
	logger *zap.Logger
	now    func() time.Time
}

// New returns a directory. A nil cache disables caching.
func New(db *store.DB, c cache.Cache, blobs blob.Storage, logger *zap.Logger) *Directory {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{db: db, cache: c, blobs: blobs, logger: logger, now: time.Now}
}

// GetUser returns a user, or nil if none exists.
func (d *Directory) GetUser(ctx context.Context, id string) (*store.User, error) {
	var u store.User
	if d.lookup(ctx, cache.UserKey(id), &u) {
		return &u, nil
	}
	got, err := d.db.GetUser(ctx, id)
	if err != nil || got == nil {
		return got, err
	}
	d.fill(ctx, cache.UserKey(id), got)
	return got, nil
}

// GetCandidateProfile returns a candidate profile, or nil if none exists.
func (d *Directory) GetCandidateProfile(ctx context.Context, userID string) (*store.CandidateProfile, error) {
	var p store.CandidateProfile
	if d.lookup(ctx, cache.ProfileKey(userID), &p) {
		return &p, nil
	}
	got, err := d.db.GetCandidateProfile(ctx, userID)
	if err != nil || got == nil {
		return got, err
	}
	d.fill(ctx, cache.ProfileKey(userID), got)
	return got, nil
}

// UpsertUser writes a user and drops its cached copy.
func (d *Directory) UpsertUser(ctx context.Context, u *store.User) error {
	if err := d.db.UpsertUser(ctx, u); err != nil {
		return err
	}
	d.invalidate(ctx, cache.UserKey(u.ID))
	return nil
}

// UpsertCandidateProfile writes a profile and drops its cached copy.
func (d *Directory) UpsertCandidateProfile(ctx context.Context, p *store.CandidateProfile) error {
	if err := d.db.UpsertCandidateProfile(ctx, p); err != nil {
		return err
	}
	d.invalidate(ctx, cache.ProfileKey(p.UserID))
	return nil
}

// SetAvatar uploads an avatar image and points the user (and the candidate
// profile, if any) at it.
func (d *Directory) SetAvatar(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	if d.blobs == nil {
		return "", fmt.Errorf("no blob storage configured")
	}
	u, err := d.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.NotFound("user %q", userID)
	}

	key := blob.AvatarKey(userID, d.now())
	url, err := d.blobs.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	metrics.Uploads.WithLabelValues(blob.KindAvatar).Inc()
	metrics.UploadBytes.Add(float64(len(data)))

	u.AvatarURL = url
	if err := d.UpsertUser(ctx, u); err != nil {
		return "", err
	}
	p, err := d.GetCandidateProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if p != nil {
		p.AvatarURL = url
		if err := d.UpsertCandidateProfile(ctx, p); err != nil {
			return "", err
		}
	}
	return url, nil
}

func (d *Directory) lookup(ctx context.Context, key string, dst any) bool {
	found, err := d.cache.Get(ctx, key, dst)
	if err != nil {
		d.logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (d *Directory) fill(ctx context.Context, key string, v any) {
	if err := d.cache.Set(ctx, key, v); err != nil {
		d.logger.Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (d *Directory) invalidate(ctx context.Context, key string) {
	if err := d.cache.Delete(ctx, key); err != nil {
		d.logger.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
