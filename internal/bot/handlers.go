package bot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"StockPulse/internal/capm"
	"StockPulse/internal/chart"
	"StockPulse/internal/finance"
	"StockPulse/internal/format"
	"StockPulse/internal/metrics"
	"StockPulse/internal/news"
	"StockPulse/internal/recorder"
)

const handlerTimeout = 30 * time.Second

const companyNewsDays = 7

// Handlers holds everything the command handlers compose. A nil provider
// client disables the commands that depend on it: the command set fails
// closed per component, not process-wide.
type Handlers struct {
	Finnhub      *finance.Finnhub
	AlphaVantage *finance.AlphaVantage
	Charts       *chart.Renderer
	Recorder     recorder.Recorder
	RiskFreeRate float64
	MarketReturn float64
	Log          zerolog.Logger
	Now          func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func tickerOption() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "ticker",
		Description: "Stock ticker symbol",
		Required:    true,
	}}
}

// registry assembles the static command set. Commands whose provider key is
// missing are left out.
func (h *Handlers) registry() map[string]command {
	cmds := map[string]command{}

	if h.Finnhub != nil {
		cmds["get-quote"] = command{
			def: &discordgo.ApplicationCommand{
				Name:        "get-quote",
				Description: "Retrieves the latest quote of the specified ticker symbol",
				Options:     tickerOption(),
			},
			handler: h.getQuote,
		}
		cmds["get-quote-rating"] = command{
			def: &discordgo.ApplicationCommand{
				Name:        "get-quote-rating",
				Description: "Returns charts of analyst recommendation trends",
				Options:     tickerOption(),
			},
			handler: h.getQuoteRating,
		}
		cmds["get-company-news"] = command{
			def: &discordgo.ApplicationCommand{
				Name:        "get-company-news",
				Description: "Retrieves recent news for the specified ticker symbol",
				Options:     tickerOption(),
			},
			handler: h.getCompanyNews,
		}
		cmds["get-capm"] = command{
			def: &discordgo.ApplicationCommand{
				Name:        "get-capm",
				Description: "Calculates the CAPM expected return for the specified ticker symbol",
				Options:     tickerOption(),
			},
			handler: h.getCAPM,
		}
		cmds["get-market-news"] = command{
			def: &discordgo.ApplicationCommand{
				Name:        "get-market-news",
				Description: "Retrieves the top stock market news from the last 24 hours",
			},
			handler: h.getMarketNews,
		}
	}

	if h.AlphaVantage != nil {
		cmds["get-quote-av"] = command{
			def: &discordgo.ApplicationCommand{
				Name:        "get-quote-av",
				Description: "Retrieves the latest quote using Alpha Vantage",
				Options:     tickerOption(),
			},
			handler: h.getQuoteAV,
		}
	}

	return cmds
}

func (h *Handlers) getQuote(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.tickerCommand("get-quote", s, i, func(ctx context.Context, ticker string) (*discordgo.WebhookParams, error) {
		quote, err := h.Finnhub.ResolveQuote(ctx, ticker)
		if err != nil {
			return h.quoteFailure(ticker, err)
		}
		return &discordgo.WebhookParams{Content: format.Quote(quote)}, nil
	})
}

func (h *Handlers) getQuoteAV(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.tickerCommand("get-quote-av", s, i, func(ctx context.Context, ticker string) (*discordgo.WebhookParams, error) {
		quote, err := h.AlphaVantage.GlobalQuote(ctx, ticker)
		if err != nil {
			return h.quoteFailure(ticker, err)
		}
		return &discordgo.WebhookParams{Content: format.Quote(quote)}, nil
	})
}

// quoteFailure maps lookup failures to user-facing copy. NoExactMatch and
// NoData are answered, not propagated; anything else bubbles up to the
// generic apology path.
func (h *Handlers) quoteFailure(ticker string, err error) (*discordgo.WebhookParams, error) {
	if finance.IsKind(err, finance.KindNoExactMatch) {
		return &discordgo.WebhookParams{Content: format.DidYouMean(finance.Candidates(err))}, nil
	}
	if finance.IsKind(err, finance.KindNoData) {
		return &discordgo.WebhookParams{
			Content: "Cannot find a quote for that symbol.\nPlease check that the ticker symbol is correct.",
		}, nil
	}
	return nil, err
}

func (h *Handlers) getQuoteRating(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.tickerCommand("get-quote-rating", s, i, func(ctx context.Context, ticker string) (*discordgo.WebhookParams, error) {
		rows, err := h.Finnhub.RecommendationTrends(ctx, ticker)
		if err != nil {
			if finance.IsKind(err, finance.KindNoData) {
				return &discordgo.WebhookParams{
					Content: fmt.Sprintf("Cannot find recommendation trends for %s", ticker),
				}, nil
			}
			return nil, err
		}

		series, err := chart.NewTrendSeries(rows)
		if err != nil {
			return nil, err
		}

		// The rendered files are transient: buffer them and remove on every
		// exit path, delivery failure included.
		barPath, err := h.Charts.RenderBar(ticker, series)
		if err != nil {
			return nil, err
		}
		defer os.Remove(barPath)

		linePath, err := h.Charts.RenderLine(ticker, series)
		if err != nil {
			return nil, err
		}
		defer os.Remove(linePath)

		barImage, err := os.ReadFile(barPath)
		if err != nil {
			return nil, err
		}
		lineImage, err := os.ReadFile(linePath)
		if err != nil {
			return nil, err
		}

		return &discordgo.WebhookParams{
			Files: []*discordgo.File{
				{Name: ticker + "_recommendation_trends_bar.png", ContentType: "image/png", Reader: bytes.NewReader(barImage)},
				{Name: ticker + "_recommendation_trends_line.png", ContentType: "image/png", Reader: bytes.NewReader(lineImage)},
			},
		}, nil
	})
}

func (h *Handlers) getCompanyNews(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.tickerCommand("get-company-news", s, i, func(ctx context.Context, ticker string) (*discordgo.WebhookParams, error) {
		now := h.now()
		articles, err := h.Finnhub.CompanyNews(ctx, ticker, now.AddDate(0, 0, -companyNewsDays), now)
		if err != nil {
			return nil, err
		}
		if len(articles) > news.MaxDigestArticles {
			articles = articles[:news.MaxDigestArticles]
		}
		embed := format.NewsEmbed(
			ticker+" Company News",
			fmt.Sprintf("Recent news for %s from the past %d days:", ticker, companyNewsDays),
			articles, now,
		)
		return &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}, nil
	})
}

func (h *Handlers) getCAPM(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.tickerCommand("get-capm", s, i, func(ctx context.Context, ticker string) (*discordgo.WebhookParams, error) {
		beta, err := h.Finnhub.Beta(ctx, ticker)
		if err != nil {
			if finance.IsKind(err, finance.KindNoData) {
				return &discordgo.WebhookParams{
					Content: fmt.Sprintf("No beta available for %s, cannot compute CAPM.", ticker),
				}, nil
			}
			return nil, err
		}
		result := capm.Compute(ticker, beta, h.RiskFreeRate, h.MarketReturn)
		return &discordgo.WebhookParams{Content: format.CAPM(result)}, nil
	})
}

func (h *Handlers) getMarketNews(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.run("get-market-news", "", s, i, func(ctx context.Context) (*discordgo.WebhookParams, error) {
		now := h.now()
		articles, err := h.Finnhub.GeneralNews(ctx)
		if err != nil {
			return nil, err
		}
		digest := news.Select(articles, now)
		embed := format.NewsEmbed(
			"Top Stock Market News",
			"Here are the most relevant stock-related news articles from the past day:",
			digest, now,
		)
		return &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}, nil
	})
}

// tickerCommand validates the ticker argument before any upstream call, then
// runs the command body.
func (h *Handlers) tickerCommand(name string, s *discordgo.Session, i *discordgo.InteractionCreate,
	fn func(ctx context.Context, ticker string) (*discordgo.WebhookParams, error)) {

	ticker := NormalizeTicker(optionValue(i, "ticker"))
	if !ValidTicker(ticker) {
		h.respondNow(s, i, "Invalid ticker symbol. Please use a valid alphanumeric ticker.")
		h.record(name, ticker, false, "validation", 0)
		metrics.CommandsTotal.WithLabelValues(name).Inc()
		metrics.CommandErrorsTotal.WithLabelValues(name).Inc()
		return
	}

	h.run(name, ticker, s, i, func(ctx context.Context) (*discordgo.WebhookParams, error) {
		return fn(ctx, ticker)
	})
}

// run acknowledges the interaction, executes the command body with a bounded
// timeout, and converts any failure into an apology message. Handler errors
// never propagate past this boundary.
func (h *Handlers) run(name, ticker string, s *discordgo.Session, i *discordgo.InteractionCreate,
	fn func(ctx context.Context) (*discordgo.WebhookParams, error)) {

	start := time.Now()
	metrics.CommandsTotal.WithLabelValues(name).Inc()

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		h.Log.Error().Err(err).Str("command", name).Msg("acknowledge interaction")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	params, err := fn(ctx)
	if err != nil {
		h.Log.Error().Err(err).Str("command", name).Str("ticker", ticker).Msg("command failed")
		metrics.CommandErrorsTotal.WithLabelValues(name).Inc()
		params = &discordgo.WebhookParams{
			Content: "An error occurred while processing your request. Please try again later.",
		}
	}

	if _, ferr := s.FollowupMessageCreate(i.Interaction, true, params); ferr != nil {
		h.Log.Error().Err(ferr).Str("command", name).Msg("send followup")
	}

	errText := ""
	if err != nil {
		errText = err.Error()
	}
	h.record(name, ticker, err == nil, errText, time.Since(start).Milliseconds())
}

func (h *Handlers) respondNow(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		h.Log.Error().Err(err).Msg("send response")
	}
}

func (h *Handlers) record(name, ticker string, ok bool, errText string, durationMs int64) {
	if h.Recorder == nil {
		return
	}
	evt := &recorder.CommandEvent{Command: name, Ticker: ticker, OK: ok, Error: errText, DurationMs: durationMs}
	if err := h.Recorder.RecordCommand(evt); err != nil {
		h.Log.Warn().Err(err).Msg("record command")
	}
}

func optionValue(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// NormalizeTicker uppercases a raw ticker argument.
func NormalizeTicker(ticker string) string {
	out := make([]rune, 0, len(ticker))
	for _, r := range ticker {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

// ValidTicker reports whether the ticker is non-empty and strictly
// alphanumeric. Anything else is rejected before an upstream call is made.
func ValidTicker(ticker string) bool {
	if ticker == "" {
		return false
	}
	for _, r := range ticker {
		isUpper := r >= 'A' && r <= 'Z'
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if !isUpper && !isLower && !isDigit {
			return false
		}
	}
	return true
}
