package recorder

// CommandEvent is one command invocation, recorded for diagnostics.
type CommandEvent struct {
	Command    string
	Ticker     string
	OK         bool
	Error      string
	DurationMs int64
}

// DigestEvent records one scheduled digest delivery attempt.
type DigestEvent struct {
	GuildID      string
	ChannelID    string
	ArticleCount int
	OK           bool
	Error        string
}

// Recorder persists an append-only audit log of bot activity.
type Recorder interface {
	RecordCommand(evt *CommandEvent) error
	RecordDigest(evt *DigestEvent) error
	Close() error
}
