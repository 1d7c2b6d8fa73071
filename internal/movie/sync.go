package movie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abduss/moviesapi/internal/metrics"
)

const maxUpstreamPayload = 10 << 20

// ErrPayloadTooLarge is returned when the upstream body exceeds the read limit.
var ErrPayloadTooLarge = errors.New("upstream payload too large")

type syncStore interface {
	ExistingEpisodeIDs(ctx context.Context, episodeIDs []int) (map[int]struct{}, error)
	CreateMany(ctx context.Context, movies []NewMovie) (int, error)
}

// SyncResult summarizes one synchronization pass.
type SyncResult struct {
	Fetched  int
	Imported int
}

// Syncer imports films from an upstream catalogue that are missing locally,
// matching on episode number.
type Syncer struct {
	store      syncStore
	baseURL    string
	client     *http.Client
	archive    Archive
	maxRetries uint64
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
	nowFunc    func() time.Time
}

// SyncOption customizes a Syncer.
type SyncOption func(*Syncer)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) SyncOption {
	return func(s *Syncer) { s.client = client }
}

// WithArchive stores each raw upstream payload before importing it.
func WithArchive(archive Archive) SyncOption {
	return func(s *Syncer) { s.archive = archive }
}

// WithMaxRetries bounds retries of a failed fetch.
func WithMaxRetries(n uint64) SyncOption {
	return func(s *Syncer) { s.maxRetries = n }
}

// WithBackOff sets the retry schedule factory.
func WithBackOff(newBackOff func() backoff.BackOff) SyncOption {
	return func(s *Syncer) { s.newBackOff = newBackOff }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) SyncOption {
	return func(s *Syncer) { s.logger = logger }
}

// NewSyncer creates a Syncer reading from baseURL + "/films".
func NewSyncer(store syncStore, baseURL string, opts ...SyncOption) *Syncer {
	s := &Syncer{
		store:      store,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     zap.NewNop(),
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("movie-sync")
	return s
}

type filmsPage struct {
	Results []NewMovie `json:"results"`
}

// Run performs one pass: fetch, diff by episode number, insert the missing ones.
func (s *Syncer) Run(ctx context.Context) (SyncResult, error) {
	result, err := s.run(ctx)
	if err != nil {
		metrics.ObserveSync("error", 0)
		s.logger.Error("movie sync failed", zap.Error(err))
		return result, err
	}
	metrics.ObserveSync("success", result.Imported)
	s.logger.Info("movie sync finished", zap.Int("fetched", result.Fetched), zap.Int("imported", result.Imported))
	return result, nil
}

func (s *Syncer) run(ctx context.Context) (SyncResult, error) {
	payload, err := s.fetch(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	if s.archive != nil {
		if err := s.archive.Put(ctx, s.archiveName(), payload); err != nil {
			s.logger.Warn("archive upstream payload", zap.Error(err))
		}
	}

	var page filmsPage
	if err := json.Unmarshal(payload, &page); err != nil {
		return SyncResult{}, fmt.Errorf("decode films: %w", err)
	}
	result := SyncResult{Fetched: len(page.Results)}
	if len(page.Results) == 0 {
		return result, nil
	}

	episodeIDs := make([]int, 0, len(page.Results))
	for _, m := range page.Results {
		episodeIDs = append(episodeIDs, m.EpisodeID)
	}
	existing, err := s.store.ExistingEpisodeIDs(ctx, episodeIDs)
	if err != nil {
		return result, fmt.Errorf("load existing episodes: %w", err)
	}

	missing := make([]NewMovie, 0, len(page.Results))
	for _, m := range page.Results {
		if _, ok := existing[m.EpisodeID]; ok {
			continue
		}
		existing[m.EpisodeID] = struct{}{}
		missing = append(missing, m)
	}
	if len(missing) == 0 {
		return result, nil
	}

	imported, err := s.store.CreateMany(ctx, missing)
	result.Imported = imported
	if err != nil {
		return result, fmt.Errorf("insert movies: %w", err)
	}
	return result, nil
}

func (s *Syncer) fetch(ctx context.Context) ([]byte, error) {
	endpoint := s.baseURL + "/films"
	var payload []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("get %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("get %s: status %d", endpoint, resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("get %s: status %d", endpoint, resp.StatusCode))
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamPayload+1))
		if err != nil {
			return fmt.Errorf("read %s: %w", endpoint, err)
		}
		if len(body) > maxUpstreamPayload {
			return backoff.Permanent(fmt.Errorf("get %s: %w", endpoint, ErrPayloadTooLarge))
		}
		payload = body
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("movie sync fetch retry", zap.Error(err), zap.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Syncer) archiveName() string {
	return fmt.Sprintf("swapi/films/%s-%s.json", s.nowFunc().UTC().Format("20060102T150405Z"), uuid.NewString())
}
