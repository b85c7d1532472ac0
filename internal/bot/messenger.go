package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// GuildIDs lists the guilds the bot is currently joined to.
func (b *Bot) GuildIDs() []string {
	guilds := b.session.State.Guilds
	ids := make([]string, 0, len(guilds))
	for _, g := range guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

// EnsureChannel finds the digest channel in a guild, creating the category
// and channel when absent. Idempotent.
func (b *Bot) EnsureChannel(guildID, categoryName, channelName string) (string, error) {
	channels, err := b.session.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("list channels: %w", err)
	}

	var categoryID string
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory && ch.Name == categoryName {
			categoryID = ch.ID
			break
		}
	}
	if categoryID == "" {
		category, err := b.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
			Name: categoryName,
			Type: discordgo.ChannelTypeGuildCategory,
		})
		if err != nil {
			return "", fmt.Errorf("create category %q: %w", categoryName, err)
		}
		categoryID = category.ID
		b.log.Info().Str("guild_id", guildID).Str("category", categoryName).Msg("category created")
	}

	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == channelName {
			return ch.ID, nil
		}
	}
	channel, err := b.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     channelName,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: categoryID,
	})
	if err != nil {
		return "", fmt.Errorf("create channel %q: %w", channelName, err)
	}
	b.log.Info().Str("guild_id", guildID).Str("channel", channelName).Msg("channel created")
	return channel.ID, nil
}

// SendEmbed posts an embed to a channel.
func (b *Bot) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := b.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}
