// Package scheduler delivers the daily market-news digest to every joined
// guild at a fixed local time of day.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockPulse/internal/format"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/news"
	"StockPulse/internal/recorder"
)

const fetchTimeout = 30 * time.Second

// NewsFetcher supplies the raw general news feed.
type NewsFetcher interface {
	GeneralNews(ctx context.Context) ([]model.NewsArticle, error)
}

// Messenger is the chat-platform surface the scheduler delivers through.
type Messenger interface {
	GuildIDs() []string
	EnsureChannel(guildID, categoryName, channelName string) (string, error)
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error
}

// guildState tracks the per-guild fire schedule. Owned exclusively by the
// scheduler; commands never touch it.
type guildState struct {
	nextFire  time.Time
	channelID string
}

// Scheduler polls once a minute and fires the digest when a guild's
// next-fire timestamp has passed.
type Scheduler struct {
	Cron     *cron.Cron
	Fetcher  NewsFetcher
	Msgr     Messenger
	Recorder recorder.Recorder

	categoryName string
	channelName  string
	fireHour     int

	mu     sync.Mutex
	guilds map[string]*guildState

	log zerolog.Logger
	now func() time.Time
}

// New creates a Scheduler firing daily at fireHour local time.
func New(fetcher NewsFetcher, msgr Messenger, rec recorder.Recorder, categoryName, channelName string, fireHour int, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(),
		Fetcher:      fetcher,
		Msgr:         msgr,
		Recorder:     rec,
		categoryName: categoryName,
		channelName:  channelName,
		fireHour:     fireHour,
		guilds:       make(map[string]*guildState),
		log:          log,
		now:          time.Now,
	}
}

// Register adds the poll to the cron schedule.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc("@every 1m", s.Poll); err != nil {
		return fmt.Errorf("register digest poll: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("fire_hour", s.fireHour).Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// Poll checks every joined guild and fires at most one digest per guild per
// day. The next-fire timestamp advances by exactly one day after a fire,
// regardless of delivery success, so a failed delivery cannot cause a fire
// storm and a short poll interval cannot cause a double fire.
func (s *Scheduler) Poll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, guildID := range s.Msgr.GuildIDs() {
		st := s.stateFor(guildID, now)

		channelID, err := s.Msgr.EnsureChannel(guildID, s.categoryName, s.channelName)
		if err != nil {
			s.log.Error().Err(err).Str("guild_id", guildID).Msg("ensure digest channel")
			continue
		}
		st.channelID = channelID

		if now.Before(st.nextFire) {
			continue
		}
		s.fire(guildID, st, now)
		// AddDate keeps the local time of day fixed across DST transitions.
		st.nextFire = st.nextFire.AddDate(0, 0, 1)
	}
}

func (s *Scheduler) stateFor(guildID string, now time.Time) *guildState {
	st, ok := s.guilds[guildID]
	if !ok {
		st = &guildState{nextFire: NextFireTime(now, s.fireHour)}
		s.guilds[guildID] = st
		s.log.Info().Str("guild_id", guildID).Time("next_fire", st.nextFire).Msg("guild schedule initialized")
	}
	return st
}

func (s *Scheduler) fire(guildID string, st *guildState, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	var digest []model.NewsArticle
	articles, err := s.Fetcher.GeneralNews(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("guild_id", guildID).Msg("fetch market news")
	} else {
		digest = news.Select(articles, now)
	}

	var embed *discordgo.MessageEmbed
	if err != nil {
		embed = format.ErrorEmbed("Market News",
			"An error occurred while retrieving market news. Please try again later.")
	} else {
		embed = format.NewsEmbed(
			"Top Stock Market News",
			"Here are the most relevant stock-related news articles from the past day:",
			digest, now,
		)
	}

	sendErr := s.Msgr.SendEmbed(st.channelID, embed)
	if sendErr != nil {
		s.log.Error().Err(sendErr).Str("guild_id", guildID).Str("channel_id", st.channelID).Msg("deliver digest")
	} else {
		metrics.DigestsDeliveredTotal.Inc()
		s.log.Info().Str("guild_id", guildID).Int("articles", len(digest)).Msg("digest delivered")
	}

	if s.Recorder != nil {
		evt := &recorder.DigestEvent{
			GuildID:      guildID,
			ChannelID:    st.channelID,
			ArticleCount: len(digest),
			OK:           err == nil && sendErr == nil,
		}
		if err != nil {
			evt.Error = err.Error()
		} else if sendErr != nil {
			evt.Error = sendErr.Error()
		}
		if rerr := s.Recorder.RecordDigest(evt); rerr != nil {
			s.log.Warn().Err(rerr).Msg("record digest")
		}
	}
}

// NextFireTime returns the next occurrence of hour o'clock local time at or
// after now.
func NextFireTime(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
