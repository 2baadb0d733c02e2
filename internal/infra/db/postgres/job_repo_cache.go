package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/repository"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/infra/metrics"
	red "agent-promosi/internal/infra/redis"
)

var _ repository.JobRepository = (*jobRepoCacheDecorator)(nil)

const jobsAllKey = "jobs:all"

func jobKey(id string) string { return fmt.Sprintf("job:%s", id) }

// jobRepoCacheDecorator caches the full listing and single jobs in Redis.
// Search is never cached. Every write invalidates, and writes made inside a
// transaction invalidate only once it commits.
type jobRepoCacheDecorator struct {
	inner repository.JobRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewJobRepoCacheDecorator(inner repository.JobRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.JobRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &jobRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func (d *jobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.JobListing, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := jobKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var j model.JobListing
		if json.Unmarshal([]byte(val), &j) == nil {
			metrics.IncCacheRequest("job", "hit")
			return &j, nil
		}
	} else if !errors.Is(err, red.Nil) {
		d.log.Warn().Err(err).Str("key", key).Msg("job cache read failed")
	}

	metrics.IncCacheRequest("job", "miss")
	j, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(j); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return j, nil
}

func (d *jobRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.JobListing, error) {
	if tx != nil {
		return d.inner.ListAll(ctx, tx)
	}
	if val, err := d.cache.Get(ctx, jobsAllKey); err == nil {
		var jobs []*model.JobListing
		if json.Unmarshal([]byte(val), &jobs) == nil {
			metrics.IncCacheRequest("job_list", "hit")
			return jobs, nil
		}
	} else if !errors.Is(err, red.Nil) {
		d.log.Warn().Err(err).Msg("job list cache read failed")
	}

	metrics.IncCacheRequest("job_list", "miss")
	jobs, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(jobs); err == nil {
		_ = d.cache.Set(ctx, jobsAllKey, b, d.ttl)
	}
	return jobs, nil
}

func (d *jobRepoCacheDecorator) Search(ctx context.Context, tx repository.Tx, f model.JobFilter) ([]*model.JobListing, error) {
	return d.inner.Search(ctx, tx, f)
}

func (d *jobRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, j *model.JobListing) error {
	if err := d.inner.Save(ctx, tx, j); err != nil {
		return err
	}
	d.invalidate(ctx, tx, jobKey(j.ID), jobsAllKey)
	return nil
}

func (d *jobRepoCacheDecorator) IncrementApplicants(ctx context.Context, tx repository.Tx, id string) error {
	if err := d.inner.IncrementApplicants(ctx, tx, id); err != nil {
		return err
	}
	d.invalidate(ctx, tx, jobKey(id), jobsAllKey)
	return nil
}

// RefreshStatuses may touch any row, so the list and every single entry are dropped.
func (d *jobRepoCacheDecorator) RefreshStatuses(ctx context.Context, tx repository.Tx, now time.Time, closingWindow time.Duration, hotThreshold int) (int64, error) {
	n, err := d.inner.RefreshStatuses(ctx, tx, now, closingWindow, hotThreshold)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	keys := []string{jobsAllKey}
	jobs, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		d.log.Warn().Err(err).Msg("listing ids for cache invalidation failed")
	}
	for _, j := range jobs {
		keys = append(keys, jobKey(j.ID))
	}
	d.invalidate(ctx, tx, keys...)
	return n, nil
}

func (d *jobRepoCacheDecorator) invalidate(ctx context.Context, tx repository.Tx, keys ...string) {
	del := func(ctx context.Context) {
		if err := d.cache.Del(ctx, keys...); err != nil {
			d.log.Warn().Err(err).Strs("keys", keys).Msg("job cache invalidation failed")
		}
	}
	if tx != nil {
		AfterCommit(ctx, del)
		return
	}
	del(ctx)
}
