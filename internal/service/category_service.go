package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/pkg/blobstore"
	"productivity-pal-be/pkg/classifier"

	"github.com/patrickmn/go-cache"
)

var staticCategories = map[string]model.Category{
	"github.com":            model.CategoryProductive,
	"stackoverflow.com":     model.CategoryProductive,
	"developer.mozilla.org": model.CategoryProductive,
	"docs.google.com":       model.CategoryProductive,
	"go.dev":                model.CategoryProductive,
	"pkg.go.dev":            model.CategoryProductive,
	"leetcode.com":          model.CategoryProductive,
	"coursera.org":          model.CategoryProductive,
	"udemy.com":             model.CategoryProductive,
	"notion.so":             model.CategoryProductive,
	"linear.app":            model.CategoryProductive,

	"facebook.com":  model.CategoryUnproductive,
	"instagram.com": model.CategoryUnproductive,
	"twitter.com":   model.CategoryUnproductive,
	"x.com":         model.CategoryUnproductive,
	"tiktok.com":    model.CategoryUnproductive,
	"reddit.com":    model.CategoryUnproductive,
	"youtube.com":   model.CategoryUnproductive,
	"netflix.com":   model.CategoryUnproductive,
	"twitch.tv":     model.CategoryUnproductive,
}

type ICategoryService interface {
	Restore(ctx context.Context) error
	Resolve(domain string) model.Category
	SetOverride(ctx context.Context, domain string, category model.Category, seq uint64) bool
	// ClassifyWithAI only touches the classifier and may run on any goroutine.
	ClassifyWithAI(ctx context.Context, domain string) model.Category
}

type categoryService struct {
	store      blobstore.Store
	classifier classifier.Classifier
	timeout    time.Duration
	logger     logger.ILogger

	overrides *cache.Cache
	// writeSeq holds the event sequence of the newest accepted write per domain.
	writeSeq map[string]uint64
}

func NewCategoryService(
	store blobstore.Store,
	cls classifier.Classifier,
	timeout time.Duration,
	log logger.ILogger,
) ICategoryService {
	return &categoryService{
		store:      store,
		classifier: cls,
		timeout:    timeout,
		logger:     log,
		overrides:  cache.New(cache.NoExpiration, 0),
		writeSeq:   make(map[string]uint64),
	}
}

func (s *categoryService) Restore(ctx context.Context) error {
	blobs, err := s.store.Get(ctx, blobstore.KeyWebsiteCategories)
	if err != nil {
		return fmt.Errorf("load category overrides: %w", err)
	}
	raw, ok := blobs[blobstore.KeyWebsiteCategories]
	if !ok {
		return nil
	}

	var stored map[string]string
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("decode category overrides: %w", err)
	}
	s.overrides.Flush()
	for domain, value := range stored {
		if category, ok := model.ParseCategory(value); ok {
			s.overrides.Set(domain, category, cache.NoExpiration)
		}
	}
	s.logger.Info("CategoryService", "Category overrides restored", map[string]interface{}{"count": s.overrides.ItemCount()})
	return nil
}

func staticCategory(domain string) (model.Category, bool) {
	if c, ok := staticCategories[domain]; ok {
		return c, true
	}
	c, ok := staticCategories[strings.TrimPrefix(domain, "www.")]
	return c, ok
}

// Resolve prefers a user/AI override, then the built-in table, then neutral.
func (s *categoryService) Resolve(domain string) model.Category {
	if x, found := s.overrides.Get(domain); found {
		return x.(model.Category)
	}
	if c, ok := staticCategory(domain); ok {
		return c
	}
	return model.CategoryNeutral
}

// SetOverride records category for domain unless a newer write already did.
func (s *categoryService) SetOverride(ctx context.Context, domain string, category model.Category, seq uint64) bool {
	if last, ok := s.writeSeq[domain]; ok && seq < last {
		s.logger.Info("CategoryService", "Discarding stale category write", map[string]interface{}{
			"domain": domain, "category": category, "seq": seq, "latest_seq": last,
		})
		return false
	}
	s.writeSeq[domain] = seq
	s.overrides.Set(domain, category, cache.NoExpiration)

	if err := s.persist(ctx); err != nil {
		s.logger.Error("CategoryService", "Failed to persist category overrides", map[string]interface{}{"error": err.Error(), "domain": domain})
	}
	return true
}

func (s *categoryService) persist(ctx context.Context) error {
	items := s.overrides.Items()
	out := make(map[string]model.Category, len(items))
	for domain, item := range items {
		out[domain] = item.Object.(model.Category)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, map[string][]byte{blobstore.KeyWebsiteCategories: data})
}

type classifyResult struct {
	category model.Category
	err      error
}

// ClassifyWithAI never waits longer than the configured timeout, even for a
// classifier that ignores its context.
func (s *categoryService) ClassifyWithAI(ctx context.Context, domain string) model.Category {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan classifyResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- classifyResult{err: fmt.Errorf("classifier panic: %v", r)}
			}
		}()
		category, err := s.classifier.Classify(ctx, domain)
		done <- classifyResult{category: category, err: err}
	}()

	var res classifyResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = classifyResult{err: ctx.Err()}
	}

	if res.err != nil {
		s.logger.Warn("CategoryService", "AI categorization failed, using neutral", map[string]interface{}{"domain": domain, "error": res.err.Error()})
		return model.CategoryNeutral
	}
	if !res.category.Valid() {
		return model.CategoryNeutral
	}
	s.logger.Info("CategoryService", "AI categorized domain", map[string]interface{}{"domain": domain, "category": res.category})
	return res.category
}
