package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"productivity-pal-be/internal/dto"
	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/pkg/activity"
	"productivity-pal-be/pkg/blobstore"
)

type IStatsService interface {
	Restore(ctx context.Context) error
	CloseVisit(visit model.Visit) model.DomainStats
	SetCategory(ctx context.Context, domain string, category model.Category, seq uint64, source string) bool
	Snapshot() []model.DomainEntry
	Score() int
	Encode() (map[string][]byte, error)
	Persist(ctx context.Context) error
	SendUpdate(channelID string) error
}

type statsService struct {
	stats      map[string]*model.DomainStats
	categories ICategoryService
	store      blobstore.Store
	delivery   Delivery
	publisher  activity.Publisher
	logger     logger.ILogger
}

func NewStatsService(
	categories ICategoryService,
	store blobstore.Store,
	delivery Delivery,
	publisher activity.Publisher,
	log logger.ILogger,
) IStatsService {
	return &statsService{
		stats:      make(map[string]*model.DomainStats),
		categories: categories,
		store:      store,
		delivery:   delivery,
		publisher:  publisher,
		logger:     log,
	}
}

// Restore replaces the in-memory mapping with the persisted one. Categories
// are reconciled against the resolver since overrides are written on change
// while stats are only written periodically.
func (s *statsService) Restore(ctx context.Context) error {
	blobs, err := s.store.Get(ctx, blobstore.KeyWebsiteStats)
	if err != nil {
		return fmt.Errorf("load website stats: %w", err)
	}

	restored := make(map[string]*model.DomainStats)
	if raw, ok := blobs[blobstore.KeyWebsiteStats]; ok {
		var entries []model.DomainEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("decode website stats: %w", err)
		}
		for _, e := range entries {
			st := e.Stats
			st.Category = s.categories.Resolve(e.Domain)
			restored[e.Domain] = &st
		}
	}
	s.stats = restored
	s.logger.Info("StatsService", "Website stats restored", map[string]interface{}{"domains": len(restored)})
	return nil
}

func (s *statsService) CloseVisit(visit model.Visit) model.DomainStats {
	st, ok := s.stats[visit.Domain]
	if !ok {
		st = &model.DomainStats{Category: s.categories.Resolve(visit.Domain)}
		s.stats[visit.Domain] = st
	}
	st.TotalTime += visit.Duration
	st.Visits++

	s.publisher.PublishVisitRecorded(visit, st.Category)
	s.broadcast()
	return *st
}

// SetCategory applies a user or AI category. It returns false when a newer
// write for the same domain already happened.
func (s *statsService) SetCategory(ctx context.Context, domain string, category model.Category, seq uint64, source string) bool {
	if !s.categories.SetOverride(ctx, domain, category, seq) {
		return false
	}
	if st, ok := s.stats[domain]; ok {
		st.Category = category
	}

	s.publisher.PublishCategoryChanged(domain, category, source)
	s.broadcast()
	return true
}

// Snapshot is ordered by total time, longest first.
func (s *statsService) Snapshot() []model.DomainEntry {
	entries := make([]model.DomainEntry, 0, len(s.stats))
	for domain, st := range s.stats {
		entries = append(entries, model.DomainEntry{Domain: domain, Stats: *st})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Stats.TotalTime != entries[j].Stats.TotalTime {
			return entries[i].Stats.TotalTime > entries[j].Stats.TotalTime
		}
		return entries[i].Domain < entries[j].Domain
	})
	return entries
}

// Score is the rounded share of productive time; 100 when nothing is recorded.
func (s *statsService) Score() int {
	var total, productive int64
	for _, st := range s.stats {
		total += int64(st.TotalTime)
		if st.Category == model.CategoryProductive {
			productive += int64(st.TotalTime)
		}
	}
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(productive) / float64(total)))
}

func (s *statsService) Encode() (map[string][]byte, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode website stats: %w", err)
	}
	return map[string][]byte{blobstore.KeyWebsiteStats: data}, nil
}

func (s *statsService) Persist(ctx context.Context) error {
	items, err := s.Encode()
	if err != nil {
		return err
	}
	return s.store.Set(ctx, items)
}

func (s *statsService) SendUpdate(channelID string) error {
	return s.delivery.Send(channelID, dto.NewStatsUpdate(s.Snapshot(), s.Score()))
}

func (s *statsService) broadcast() {
	s.delivery.Broadcast(dto.NewStatsUpdate(s.Snapshot(), s.Score()))
}
