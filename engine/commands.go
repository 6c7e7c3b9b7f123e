package engine

import "strings"

// Commands holds the trigger strings the dispatcher matches against. Triggers
// are configuration, not literals in dispatch logic, so a deployment can
// rename any command without touching the engine.
type Commands struct {
	// Exact-match triggers.
	Help        string
	SpecialHelp string
	Roll        string
	Stats       string
	Save        string
	Afk         string
	Checkin     string
	MsgList     string
	// Question is the bare question-mark easter egg.
	Question string

	// Prefix-match triggers (argument-taking).
	Silence   string
	Unsilence string
	Broadcast string
	TempMute  string
	Upper     string
	Lower     string
	Reply     string
	UserInfo  string
}

// DefaultCommands returns the stock trigger set.
func DefaultCommands() Commands {
	return Commands{
		Help:        "!help",
		SpecialHelp: "!help s",
		Roll:        "!roll",
		Stats:       "!stats",
		Save:        "!save",
		Afk:         "!afk",
		Checkin:     "!checkin",
		MsgList:     "!msglist",
		Question:    "?",
		Silence:     "!s",
		Unsilence:   "!t",
		Broadcast:   "!con",
		TempMute:    "!mute",
		Upper:       "!upper",
		Lower:       "!lower",
		Reply:       "!reply",
		UserInfo:    "!userinfo",
	}
}

// helpText renders the public command list. Privileged commands are listed
// separately by specialHelpText.
func (c Commands) helpText() string {
	lines := []string{
		"    bot commands:",
		c.Help + " - show all available commands",
		c.Roll + " - roll a die (1-6)",
		c.Stats + " - show the most active users in the channel",
		c.Save + " - export chat history as a JSON file",
		c.Afk + " - toggle away (AFK) status",
		c.SpecialHelp + " - show privileged command help",
		c.Checkin + " - daily check-in, tracks consecutive days",
		c.Upper + " - convert text to upper case [" + c.Upper + " <text>]",
		c.Lower + " - convert text to lower case [" + c.Lower + " <text>]",
		c.Reply + " - quote an earlier message by ID (see " + c.MsgList + ")",
		c.UserInfo + " - look up a user (defaults to yourself)",
		c.MsgList + " - show the 5 most recent message IDs",
		"p.s. don't abuse the bot",
	}
	return strings.Join(lines, "\n")
}

// specialHelpText renders the privileged command list.
func (c Commands) specialHelpText() string {
	lines := []string{
		"    privileged commands:",
		c.Silence + " <user> - silence a user permanently",
		c.Unsilence + " <user> - lift a permanent silence",
		c.Broadcast + " <text> - broadcast text as the bot",
		c.TempMute + " <user> <minutes> - mute a user temporarily",
	}
	return strings.Join(lines, "\n")
}
