package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/model"
)

type fakeFetcher struct {
	articles []model.NewsArticle
	err      error
	calls    int
}

func (f *fakeFetcher) GeneralNews(_ context.Context) ([]model.NewsArticle, error) {
	f.calls++
	return f.articles, f.err
}

type fakeMessenger struct {
	guilds  []string
	sendErr error
	sent    []string // channel IDs, one entry per delivery attempt
}

func (m *fakeMessenger) GuildIDs() []string { return m.guilds }

func (m *fakeMessenger) EnsureChannel(guildID, _, _ string) (string, error) {
	return "chan-" + guildID, nil
}

func (m *fakeMessenger) SendEmbed(channelID string, _ *discordgo.MessageEmbed) error {
	m.sent = append(m.sent, channelID)
	return m.sendErr
}

func newTestScheduler(fetcher *fakeFetcher, msgr *fakeMessenger, now time.Time) *Scheduler {
	s := New(fetcher, msgr, nil, "Stock Channels", "stock-news", 6, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

func TestNextFireTime(t *testing.T) {
	loc := time.UTC
	before := time.Date(2025, 6, 15, 5, 30, 0, 0, loc)
	after := time.Date(2025, 6, 15, 7, 0, 0, 0, loc)

	assert.Equal(t, time.Date(2025, 6, 15, 6, 0, 0, 0, loc), NextFireTime(before, 6))
	assert.Equal(t, time.Date(2025, 6, 16, 6, 0, 0, 0, loc), NextFireTime(after, 6))
}

func TestPoll_FiresOncePerDay(t *testing.T) {
	fetcher := &fakeFetcher{articles: []model.NewsArticle{{
		Headline:  "Stock rally",
		Source:    "cnbc",
		Timestamp: time.Date(2025, 6, 15, 5, 0, 0, 0, time.UTC).Unix(),
	}}}
	msgr := &fakeMessenger{guilds: []string{"g1"}}

	now := time.Date(2025, 6, 15, 5, 59, 0, 0, time.UTC)
	s := newTestScheduler(fetcher, msgr, now)

	// Before the fire boundary: nothing happens.
	s.Poll()
	assert.Empty(t, msgr.sent)

	// Two polls within the same minute after the boundary: one delivery.
	now = time.Date(2025, 6, 15, 6, 0, 10, 0, time.UTC)
	s.now = func() time.Time { return now }
	s.Poll()
	now = time.Date(2025, 6, 15, 6, 0, 50, 0, time.UTC)
	s.now = func() time.Time { return now }
	s.Poll()

	require.Len(t, msgr.sent, 1)
	assert.Equal(t, "chan-g1", msgr.sent[0])
	assert.Equal(t, 1, fetcher.calls)

	// Next fire advanced by exactly one calendar day, not a poll multiple.
	st := s.guilds["g1"]
	assert.Equal(t, time.Date(2025, 6, 16, 6, 0, 0, 0, time.UTC), st.nextFire)
}

func TestPoll_SendFailureStillAdvances(t *testing.T) {
	fetcher := &fakeFetcher{}
	msgr := &fakeMessenger{guilds: []string{"g1"}, sendErr: errors.New("boom")}

	now := time.Date(2025, 6, 15, 6, 5, 0, 0, time.UTC)
	s := newTestScheduler(fetcher, msgr, now)

	// First poll initializes the schedule at tomorrow 06:00 (already past
	// today's boundary), so force the state back to fire immediately.
	s.Poll()
	s.guilds["g1"].nextFire = time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC)

	s.Poll()
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, time.Date(2025, 6, 16, 6, 0, 0, 0, time.UTC), s.guilds["g1"].nextFire)

	// The failed delivery must not trigger a retry storm.
	s.Poll()
	assert.Len(t, msgr.sent, 1)
}

func TestPoll_KeepsLocalHourAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	fetcher := &fakeFetcher{}
	msgr := &fakeMessenger{guilds: []string{"g1"}}

	// March 9 2025, 02:00 EST springs forward to 03:00 EDT.
	now := time.Date(2025, 3, 8, 6, 1, 0, 0, loc)
	s := newTestScheduler(fetcher, msgr, now)
	s.Poll()
	s.guilds["g1"].nextFire = time.Date(2025, 3, 8, 6, 0, 0, 0, loc)

	s.Poll()
	require.Len(t, msgr.sent, 1)
	next := s.guilds["g1"].nextFire
	assert.Equal(t, 6, next.Hour(), "fire hour must stay fixed in local time")
	assert.True(t, next.Equal(time.Date(2025, 3, 9, 6, 0, 0, 0, loc)))
}

func TestNextFireTime_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2025, 3, 8, 7, 0, 0, 0, loc)
	next := NextFireTime(now, 6)
	assert.Equal(t, 6, next.Hour())
	assert.True(t, next.Equal(time.Date(2025, 3, 9, 6, 0, 0, 0, loc)))
}

func TestPoll_PerGuildState(t *testing.T) {
	fetcher := &fakeFetcher{}
	msgr := &fakeMessenger{guilds: []string{"g1", "g2"}}

	now := time.Date(2025, 6, 15, 6, 1, 0, 0, time.UTC)
	s := newTestScheduler(fetcher, msgr, now)
	s.Poll()
	s.guilds["g1"].nextFire = time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC)
	s.guilds["g2"].nextFire = time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC)

	s.Poll()
	assert.ElementsMatch(t, []string{"chan-g1", "chan-g2"}, msgr.sent)
}
