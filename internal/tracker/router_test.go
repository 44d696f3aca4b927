package tracker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"productivity-pal-be/internal/dto"
	"productivity-pal-be/internal/model"
	"productivity-pal-be/pkg/blobstore"
	"productivity-pal-be/pkg/classifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatsRepliesToSender(t *testing.T) {
	h := newHarness(t, classifier.Disabled{}, nil)
	asker := h.connect("a", "content")
	other := h.connect("b", "content")

	h.send("a", map[string]string{"type": dto.KindGetStats})

	replies := asker.ofType(t, dto.KindStatsUpdate)
	require.Len(t, replies, 1)
	assert.Equal(t, []interface{}{}, replies[0]["data"])
	assert.Empty(t, other.messages(t))
}

func TestUpdateCategoryBroadcasts(t *testing.T) {
	h := newHarness(t, classifier.Disabled{}, nil)
	a := h.connect("a", "content")
	b := h.connect("b", "content")

	h.dispatch(TabFocused{TabID: 1, URL: "https://x.com"})
	h.clock.Advance(time.Second)
	h.dispatch(TabClosed{TabID: 1})
	a.reset()
	b.reset()

	h.send("a", map[string]string{"type": dto.KindUpdateCategory, "domain": "x.com", "category": "productive"})

	st, _ := h.stats("x.com")
	assert.Equal(t, model.CategoryProductive, st.Category)
	for _, ch := range []*fakeChannel{a, b} {
		updates := ch.ofType(t, dto.KindStatsUpdate)
		require.Len(t, updates, 1)
		assert.EqualValues(t, 100, updates[0]["productivityScore"])
	}

	blobs, err := h.store.Get(context.Background(), blobstore.KeyWebsiteCategories)
	require.NoError(t, err)
	var stored map[string]string
	require.NoError(t, json.Unmarshal(blobs[blobstore.KeyWebsiteCategories], &stored))
	assert.Equal(t, "productive", stored["x.com"])
}

func TestInvalidCategoryIsDropped(t *testing.T) {
	h := newHarness(t, classifier.Disabled{}, nil)
	a := h.connect("a", "content")

	before := h.engine.categories.Resolve("x.com")

	h.send("a", map[string]string{"type": dto.KindUpdateCategory, "domain": "example.org", "category": "fun"})
	h.send("a", map[string]string{"type": dto.KindUpdateCategory, "domain": "x.com", "category": "fun"})
	assert.Empty(t, a.messages(t))
	assert.Equal(t, model.CategoryNeutral, h.engine.categories.Resolve("example.org"))
	assert.Equal(t, before, h.engine.categories.Resolve("x.com"))
}

func TestUpdateBreakSettings(t *testing.T) {
	h := newHarness(t, classifier.Disabled{}, nil)
	a := h.connect("a", "content")
	b := h.connect("b", "content")

	h.send("a", map[string]interface{}{"type": dto.KindUpdateBreakSettings, "breakInterval": 25, "breakDuration": 0.5})

	acks := a.ofType(t, dto.KindBreakSettingsUpdated)
	require.Len(t, acks, 1)
	assert.Equal(t, true, acks[0]["success"])
	assert.Empty(t, b.ofType(t, dto.KindBreakSettingsUpdated))
	assert.NotEmpty(t, b.ofType(t, dto.KindBreakStatus))

	state := h.engine.breaks.State()
	assert.Equal(t, 25*time.Minute, state.Settings.Interval)
	assert.Equal(t, 30*time.Second, state.Settings.Duration)
	assert.Equal(t, h.clock.Now(), state.LastBreakTime)
}

func TestUpdateBreakSettingsRejectsInvalid(t *testing.T) {
	h := newHarness(t, classifier.Disabled{}, nil)
	a := h.connect("a", "content")

	h.send("a", map[string]interface{}{"type": dto.KindUpdateBreakSettings, "breakInterval": -1, "breakDuration": 5})

	acks := a.ofType(t, dto.KindBreakSettingsUpdated)
	require.Len(t, acks, 1)
	assert.Equal(t, false, acks[0]["success"])
	assert.NotEmpty(t, acks[0]["error"])
	assert.Equal(t, time.Hour, h.engine.breaks.State().Settings.Interval)
}

func TestBreakControlKinds(t *testing.T) {
	h := newHarness(t, classifier.Disabled{}, nil)
	a := h.connect("a", "content")

	h.send("a", map[string]string{"type": dto.KindGetBreakStatus})
	status := a.ofType(t, dto.KindBreakStatus)
	require.Len(t, status, 1)
	assert.Equal(t, false, status[0]["isOnBreak"])

	h.send("a", map[string]string{"type": dto.KindStartBreak})
	assert.True(t, h.engine.breaks.State().IsOnBreak())

	h.send("a", map[string]string{"type": dto.KindEndBreak})
	assert.False(t, h.engine.breaks.State().IsOnBreak())
}

func TestUnknownAndMalformedMessagesIgnored(t *testing.T) {
	h := newHarness(t, classifier.Disabled{}, nil)
	a := h.connect("a", "content")

	h.send("a", map[string]string{"type": "SOMETHING_NEW"})
	h.send("a", map[string]string{"type": dto.KindPing})
	h.dispatch(ChannelMessage{ChannelID: "a", Data: []byte("not json")})

	assert.Empty(t, a.messages(t))
	assert.Equal(t, 1, h.hub.Count())
}
