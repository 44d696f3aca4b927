package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/pkg/blobstore"
	"productivity-pal-be/pkg/classifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrder(t *testing.T) {
	svc := NewCategoryService(blobstore.NewMemoryStore(), classifier.Disabled{}, time.Second, logger.NewNopLogger())

	assert.Equal(t, model.CategoryProductive, svc.Resolve("github.com"))
	assert.Equal(t, model.CategoryProductive, svc.Resolve("www.github.com"))
	assert.Equal(t, model.CategoryUnproductive, svc.Resolve("youtube.com"))
	assert.Equal(t, model.CategoryNeutral, svc.Resolve("example.org"))

	require.True(t, svc.SetOverride(context.Background(), "youtube.com", model.CategoryProductive, 1))
	assert.Equal(t, model.CategoryProductive, svc.Resolve("youtube.com"))
}

func TestSetOverrideRejectsOlderWrites(t *testing.T) {
	svc := NewCategoryService(blobstore.NewMemoryStore(), classifier.Disabled{}, time.Second, logger.NewNopLogger())
	ctx := context.Background()

	require.True(t, svc.SetOverride(ctx, "d.com", model.CategoryProductive, 7))
	assert.False(t, svc.SetOverride(ctx, "d.com", model.CategoryUnproductive, 3))
	assert.Equal(t, model.CategoryProductive, svc.Resolve("d.com"))

	assert.True(t, svc.SetOverride(ctx, "d.com", model.CategoryNeutral, 9))
	assert.Equal(t, model.CategoryNeutral, svc.Resolve("d.com"))
}

func TestOverridesPersistAndRestore(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	svc := NewCategoryService(store, classifier.Disabled{}, time.Second, logger.NewNopLogger())
	require.True(t, svc.SetOverride(ctx, "news.site", model.CategoryUnproductive, 1))

	blobs, err := store.Get(ctx, blobstore.KeyWebsiteCategories)
	require.NoError(t, err)
	var stored map[string]string
	require.NoError(t, json.Unmarshal(blobs[blobstore.KeyWebsiteCategories], &stored))
	assert.Equal(t, map[string]string{"news.site": "unproductive"}, stored)

	fresh := NewCategoryService(store, classifier.Disabled{}, time.Second, logger.NewNopLogger())
	require.NoError(t, fresh.Restore(ctx))
	assert.Equal(t, model.CategoryUnproductive, fresh.Resolve("news.site"))
}

func TestRestoreSkipsUnknownCategories(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, map[string][]byte{
		blobstore.KeyWebsiteCategories: []byte(`{"a.com":"productive","b.com":"bogus"}`),
	}))

	svc := NewCategoryService(store, classifier.Disabled{}, time.Second, logger.NewNopLogger())
	require.NoError(t, svc.Restore(ctx))
	assert.Equal(t, model.CategoryProductive, svc.Resolve("a.com"))
	assert.Equal(t, model.CategoryNeutral, svc.Resolve("b.com"))
}

func TestClassifyWithAI(t *testing.T) {
	cases := []struct {
		name string
		cls  classifierFunc
		want model.Category
	}{
		{
			name: "success",
			cls: func(context.Context, string) (model.Category, error) {
				return model.CategoryProductive, nil
			},
			want: model.CategoryProductive,
		},
		{
			name: "error falls back to neutral",
			cls: func(context.Context, string) (model.Category, error) {
				return "", errors.New("quota exceeded")
			},
			want: model.CategoryNeutral,
		},
		{
			name: "invalid category falls back to neutral",
			cls: func(context.Context, string) (model.Category, error) {
				return model.Category("meh"), nil
			},
			want: model.CategoryNeutral,
		},
		{
			name: "panic falls back to neutral",
			cls: func(context.Context, string) (model.Category, error) {
				panic("boom")
			},
			want: model.CategoryNeutral,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCategoryService(blobstore.NewMemoryStore(), tc.cls, time.Second, logger.NewNopLogger())
			assert.Equal(t, tc.want, svc.ClassifyWithAI(context.Background(), "x.com"))
		})
	}
}

func TestClassifyWithAITimesOut(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	stuck := classifierFunc(func(context.Context, string) (model.Category, error) {
		<-block
		return model.CategoryProductive, nil
	})

	svc := NewCategoryService(blobstore.NewMemoryStore(), stuck, 20*time.Millisecond, logger.NewNopLogger())

	start := time.Now()
	got := svc.ClassifyWithAI(context.Background(), "slow.com")
	assert.Equal(t, model.CategoryNeutral, got)
	assert.Less(t, time.Since(start), time.Second)
}
