// Package bot wires the Discord session to the command handlers.
package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Handler processes one slash-command interaction.
type Handler func(s *discordgo.Session, i *discordgo.InteractionCreate)

// command pairs a Discord command definition with its handler. The registry
// is assembled once at startup; there is no dynamic discovery.
type command struct {
	def     *discordgo.ApplicationCommand
	handler Handler
}

// Bot owns the Discord session and the static command registry.
type Bot struct {
	session    *discordgo.Session
	guildID    string
	registry   map[string]command
	registered []*discordgo.ApplicationCommand
	log        zerolog.Logger
}

// New creates the bot and its session. Commands are registered with Discord
// in Start, after the gateway connection is up.
func New(token, guildID string, h *Handlers, log zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		session:  session,
		guildID:  guildID,
		registry: h.registry(),
		log:      log,
	}

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.Info().Str("user", r.User.String()).Msg("logged in")
	})
	session.AddHandler(b.dispatch)

	return b, nil
}

// Session exposes the underlying Discord session for the scheduler.
func (b *Bot) Session() *discordgo.Session { return b.session }

// Start opens the gateway connection and registers the command set.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	appID := b.session.State.User.ID
	for name, cmd := range b.registry {
		created, err := b.session.ApplicationCommandCreate(appID, b.guildID, cmd.def)
		if err != nil {
			b.session.Close()
			return fmt.Errorf("register command %s: %w", name, err)
		}
		b.registered = append(b.registered, created)
		b.log.Info().Str("command", name).Msg("command registered")
	}
	return nil
}

// Stop removes the registered commands and closes the session.
func (b *Bot) Stop() {
	appID := b.session.State.User.ID
	for _, cmd := range b.registered {
		if err := b.session.ApplicationCommandDelete(appID, b.guildID, cmd.ID); err != nil {
			b.log.Warn().Err(err).Str("command", cmd.Name).Msg("delete command")
		}
	}
	if err := b.session.Close(); err != nil {
		b.log.Warn().Err(err).Msg("close discord session")
	}
}

func (b *Bot) dispatch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	cmd, ok := b.registry[name]
	if !ok {
		b.log.Warn().Str("command", name).Msg("unknown command")
		return
	}
	cmd.handler(s, i)
}
