package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sun-ldigv3/hack-chat-simple-bot/telemetry"
)

// ChatEvent is one inbound chat line delivered by the transport.
type ChatEvent struct {
	Nick string
	Text string
}

// Sender accepts outbound chat text. When mention is non-empty the transport
// prefixes the message with "@<mention> ".
type Sender interface {
	SendChat(text, mention string)
}

// Exporter persists the ordered message history and returns where it was written.
type Exporter interface {
	Export(msgs []Message) (string, error)
}

// Options configures a new Engine. Sender is required; zero-valued fields fall
// back to defaults (real clock, math/rand die, DefaultCommands).
type Options struct {
	Nick          string
	Commands      Commands
	HistoryLimit  int
	SweepInterval time.Duration

	// IsAuthorized gates the privileged commands. Required; the engine carries
	// no default policy.
	IsAuthorized func(nick string) bool

	Sender   Sender
	Exporter Exporter

	// Archive, when set, is called once per recorded message. Failures inside
	// it must not reach the engine; it is fire-and-forget.
	Archive func(Message)

	// Now and Roll exist for deterministic tests.
	Now  func() time.Time
	Roll func() int
}

// Engine is the stateful command-and-moderation core for a single channel
// session. All state is owned by one goroutine: Run serializes transport
// events and sweep ticks onto one queue, so no field needs a lock. Dispatch
// and Sweep must only be called from that goroutine (or from single-threaded
// tests).
type Engine struct {
	nick          string
	cmds          Commands
	sweepInterval time.Duration

	log      *MessageLog
	activity *ActivityTracker
	mutes    *MuteStore

	send         Sender
	exporter     Exporter
	archive      func(Message)
	isAuthorized func(string) bool
	now          func() time.Time
	roll         func() int

	events chan ChatEvent
}

var mentionRE = regexp.MustCompile(`@(\w+)`)

func New(opts Options) *Engine {
	if opts.Commands == (Commands{}) {
		opts.Commands = DefaultCommands()
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Roll == nil {
		opts.Roll = func() int { return rand.IntN(6) + 1 }
	}
	if opts.IsAuthorized == nil {
		opts.IsAuthorized = func(string) bool { return false }
	}
	return &Engine{
		nick:          opts.Nick,
		cmds:          opts.Commands,
		sweepInterval: opts.SweepInterval,
		log:           NewMessageLog(opts.HistoryLimit),
		activity:      NewActivityTracker(),
		mutes:         NewMuteStore(),
		send:          opts.Sender,
		exporter:      opts.Exporter,
		archive:       opts.Archive,
		isAuthorized:  opts.IsAuthorized,
		now:           opts.Now,
		roll:          opts.Roll,
		events:        make(chan ChatEvent, 64),
	}
}

// Enqueue hands an inbound chat event to the engine goroutine. It drops the
// event if the queue is full rather than block the transport reader.
func (e *Engine) Enqueue(ev ChatEvent) {
	select {
	case e.events <- ev:
	default:
		slog.Warn("engine queue full, dropping event", slog.String("nick", ev.Nick))
		inc(telemetry.MessagesDropped)
	}
}

// Run processes chat events and mute-sweep ticks on a single goroutine until
// ctx is cancelled. The sweep ticker fires on wall-clock cadence independent
// of chat volume and stops before Run returns.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()
	slog.Info("engine started", slog.String("nick", e.nick), slog.Duration("sweep_interval", e.sweepInterval))
	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped")
			return
		case ev := <-e.events:
			_, span := telemetry.StartSpan(ctx, "engine", "dispatch",
				attribute.String("chat.nick", ev.Nick))
			telemetry.TimeFunc(telemetry.DispatchDuration, func() {
				e.Dispatch(ev.Nick, ev.Text)
			})
			span.End()
		case <-ticker.C:
			e.Sweep()
		}
	}
}

// Dispatch runs the per-message state machine: trim, mute short-circuit,
// exact-match commands, prefix-match commands, AFK mention scan, then record.
// A muted speaker gets one remaining-time notice and nothing else happens for
// that message (it is not recorded or counted).
func (e *Engine) Dispatch(nick, text string) {
	text = strings.TrimSpace(text)
	now := e.now()
	inc(telemetry.MessagesSeen)

	if e.mutes.IsMuted(nick, now) {
		inc(telemetry.MutedRejections)
		if e.mutes.IsPermanent(nick) {
			e.send.SendChat("you are muted permanently", nick)
		} else {
			e.send.SendChat(fmt.Sprintf("you are muted, %d minute(s) remaining", e.mutes.RemainingMinutes(nick, now)), nick)
		}
		return
	}

	if e.dispatchExact(nick, text, now) || e.dispatchPrefix(nick, text, now) {
		inc(telemetry.CommandsDispatched)
	}

	// Runs even when a command matched; only the first @mention is inspected.
	e.notifyAfkMention(text, now)

	id := e.log.Record(nick, text, now)
	e.activity.RecordActivity(nick)
	if e.archive != nil {
		e.archive(Message{ID: id, Nick: nick, Text: text, ObservedAt: now})
	}
}

// Sweep removes lapsed temporary mutes and announces each lapse publicly.
func (e *Engine) Sweep() {
	for _, nick := range e.mutes.SweepExpired(e.now()) {
		slog.Info("temporary mute lapsed", slog.String("nick", nick))
		inc(telemetry.MutesExpired)
		e.send.SendChat(fmt.Sprintf("%s's temporary mute has expired", nick), "")
	}
	telemetry.SetActiveMutes(e.mutes.Len())
}

func (e *Engine) dispatchExact(nick, text string, now time.Time) bool {
	switch text {
	case e.cmds.Help:
		e.send.SendChat(e.cmds.helpText(), nick)
	case e.cmds.SpecialHelp:
		e.send.SendChat(e.cmds.specialHelpText(), nick)
	case e.cmds.Question:
		e.send.SendChat("I'm just as puzzled.", nick)
	case e.cmds.Roll:
		e.send.SendChat(fmt.Sprintf("🎲 dice roll: %d", e.roll()), nick)
	case e.cmds.Stats:
		e.sendStats(nick)
	case e.cmds.Save:
		e.saveHistory(nick)
	case e.cmds.Afk:
		e.toggleAfk(nick, now)
	case e.cmds.Checkin:
		e.checkin(nick, now)
	case e.cmds.MsgList:
		e.sendMsgList(nick)
	case e.cmds.UserInfo:
		e.sendUserInfo(nick, nick, now)
	default:
		return false
	}
	return true
}

func (e *Engine) dispatchPrefix(nick, text string, now time.Time) bool {
	switch {
	case hasArg(text, e.cmds.Silence):
		e.silence(nick, argOf(text, e.cmds.Silence))
	case hasArg(text, e.cmds.Unsilence):
		e.unsilence(nick, argOf(text, e.cmds.Unsilence))
	case hasArg(text, e.cmds.Broadcast):
		e.broadcast(nick, argOf(text, e.cmds.Broadcast))
	case hasArg(text, e.cmds.TempMute):
		e.tempMute(nick, argOf(text, e.cmds.TempMute), now)
	case hasArg(text, e.cmds.Upper):
		e.convertCase(nick, argOf(text, e.cmds.Upper), true)
	case hasArg(text, e.cmds.Lower):
		e.convertCase(nick, argOf(text, e.cmds.Lower), false)
	case hasArg(text, e.cmds.Reply):
		e.replyByID(nick, argOf(text, e.cmds.Reply))
	case hasArg(text, e.cmds.UserInfo):
		target := argOf(text, e.cmds.UserInfo)
		if target == "" {
			target = nick
		}
		e.sendUserInfo(nick, target, now)
	default:
		return false
	}
	return true
}

func hasArg(text, trigger string) bool {
	return strings.HasPrefix(text, trigger+" ")
}

// argOf returns the text after "trigger ", trimmed. Callers must have checked
// hasArg first.
func argOf(text, trigger string) string {
	return strings.TrimSpace(text[len(trigger)+1:])
}

func (e *Engine) notifyAfkMention(text string, now time.Time) {
	m := mentionRE.FindStringSubmatch(text)
	if m == nil {
		return
	}
	mentioned := m[1]
	if !e.activity.IsAfk(mentioned) {
		return
	}
	d, err := e.activity.AfkDuration(mentioned, now)
	if err != nil {
		return
	}
	e.send.SendChat(fmt.Sprintf("%s is AFK (away for %ds)", mentioned, int(d.Seconds())), "")
}

func (e *Engine) sendStats(nick string) {
	top := e.activity.TopK(3)
	if len(top) == 0 {
		e.send.SendChat("🏆 most active users: no data yet", nick)
		return
	}
	parts := make([]string, 0, len(top))
	for _, uc := range top {
		parts = append(parts, fmt.Sprintf("%s: %d messages", uc.Nick, uc.Count))
	}
	e.send.SendChat("🏆 most active users: "+strings.Join(parts, ", "), nick)
}

func (e *Engine) saveHistory(nick string) {
	if e.exporter == nil {
		e.send.SendChat("chat export is not configured", nick)
		return
	}
	path, err := e.exporter.Export(e.log.All())
	if err != nil {
		slog.Error("chat history export failed", slog.Any("err", err))
		e.send.SendChat("failed to save chat history", nick)
		return
	}
	e.send.SendChat("chat history saved to "+path, nick)
}

func (e *Engine) toggleAfk(nick string, now time.Time) {
	if e.activity.IsAfk(nick) {
		d, _ := e.activity.AfkDuration(nick, now)
		e.activity.ClearAfk(nick)
		e.send.SendChat(fmt.Sprintf("%s is back (away for %ds)", nick, int(d.Seconds())), "")
	} else {
		e.activity.SetAfk(nick, now)
		e.send.SendChat(fmt.Sprintf("%s is now AFK", nick), "")
	}
	telemetry.SetAfkUsers(e.activity.AfkCount())
}

func (e *Engine) checkin(nick string, now time.Time) {
	streak, already := e.activity.Checkin(nick, now)
	if already {
		e.send.SendChat(fmt.Sprintf("@%s already checked in today, current streak %d day(s)", nick, streak), "")
		return
	}
	msg := fmt.Sprintf("@%s checked in! current streak %d day(s)", nick, streak)
	if streak%7 == 0 {
		msg += "\n🎉 a full week of check-ins, enjoy the channel badge!"
	}
	e.send.SendChat(msg, "")
}

func (e *Engine) sendMsgList(nick string) {
	recent := e.log.Recent(5)
	if len(recent) == 0 {
		e.send.SendChat("no chat history yet", nick)
		return
	}
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		lines = append(lines, fmt.Sprintf("ID: %d | @%s: %s", m.ID, m.Nick, truncate(m.Text, 20)))
	}
	e.send.SendChat(fmt.Sprintf("  latest %d message IDs (for %s):\n%s", len(recent), e.cmds.Reply, strings.Join(lines, "\n")), nick)
}

// authorize gates privileged handlers behind the injected predicate.
func (e *Engine) authorize(nick string) error {
	if !e.isAuthorized(nick) {
		return ErrUnauthorized
	}
	return nil
}

func (e *Engine) silence(nick, target string) {
	if target == "" {
		e.send.SendChat(fmt.Sprintf("usage: %s <user>", e.cmds.Silence), nick)
		return
	}
	if target == e.nick {
		e.send.SendChat("cannot mute the bot itself", nick)
		return
	}
	if err := e.authorize(nick); err != nil {
		e.send.SendChat("you are not allowed to use this command", nick)
		return
	}
	e.mutes.Mute(target, time.Time{})
	telemetry.SetActiveMutes(e.mutes.Len())
	e.send.SendChat(fmt.Sprintf("%s has been silenced permanently", target), "")
}

func (e *Engine) unsilence(nick, target string) {
	if target == "" {
		e.send.SendChat(fmt.Sprintf("usage: %s <user>", e.cmds.Unsilence), nick)
		return
	}
	if err := e.authorize(nick); err != nil {
		e.send.SendChat("you are not allowed to use this command", nick)
		return
	}
	e.mutes.Unmute(target)
	telemetry.SetActiveMutes(e.mutes.Len())
	e.send.SendChat(fmt.Sprintf("%s is no longer silenced", target), "")
}

func (e *Engine) broadcast(nick, content string) {
	if err := e.authorize(nick); err != nil {
		e.send.SendChat("you are not allowed to use this command", nick)
		return
	}
	e.send.SendChat(content, "")
}

// parseTempMuteArgs validates "<user> <minutes>". The duration must be a
// positive whole number of minutes.
func parseTempMuteArgs(args string) (target string, minutes int, err error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("%w: want <user> <minutes>", ErrUsage)
	}
	minutes, convErr := strconv.Atoi(parts[1])
	if convErr != nil || minutes <= 0 {
		return "", 0, fmt.Errorf("%w: minutes must be a positive integer", ErrUsage)
	}
	return parts[0], minutes, nil
}

func (e *Engine) tempMute(nick, args string, now time.Time) {
	if err := e.authorize(nick); err != nil {
		e.send.SendChat("you are not allowed to use this command", nick)
		return
	}
	target, minutes, err := parseTempMuteArgs(args)
	if err != nil {
		e.send.SendChat(fmt.Sprintf("usage: %s <user> <minutes>", e.cmds.TempMute), nick)
		return
	}
	if target == e.nick {
		e.send.SendChat("cannot mute the bot itself", nick)
		return
	}
	e.mutes.Mute(target, now.Add(time.Duration(minutes)*time.Minute))
	telemetry.SetActiveMutes(e.mutes.Len())
	e.send.SendChat(fmt.Sprintf("%s muted for %d minute(s)", target, minutes), "")
}

func (e *Engine) convertCase(nick, content string, upper bool) {
	if content == "" {
		trigger := e.cmds.Lower
		if upper {
			trigger = e.cmds.Upper
		}
		e.send.SendChat(fmt.Sprintf("usage: %s <text>", trigger), nick)
		return
	}
	result := strings.ToLower(content)
	if upper {
		result = strings.ToUpper(content)
	}
	e.send.SendChat(fmt.Sprintf("@%s result: %s", nick, result), "")
}

func (e *Engine) replyByID(nick, args string) {
	parts := strings.SplitN(args, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		e.send.SendChat(fmt.Sprintf("usage: %s <id> <text> (see %s for IDs)", e.cmds.Reply, e.cmds.MsgList), nick)
		return
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		e.send.SendChat(fmt.Sprintf("usage: %s <id> <text> (see %s for IDs)", e.cmds.Reply, e.cmds.MsgList), nick)
		return
	}
	target, err := e.log.Get(id)
	if err != nil {
		e.send.SendChat(fmt.Sprintf("no message with ID %d, use %s to see recent IDs", id, e.cmds.MsgList), nick)
		return
	}
	e.send.SendChat(fmt.Sprintf("  quoting #%d @%s (%s): %s\n@%s: %s",
		target.ID, target.Nick, target.ObservedAt.Format("2006-01-02"), target.Text, nick, parts[1]), "")
}

func (e *Engine) sendUserInfo(requester, target string, now time.Time) {
	known := e.activity.Known(target)
	afk := e.activity.IsAfk(target)
	muted := e.mutes.IsMuted(target, now)
	if !known && !afk && !muted {
		e.send.SendChat(fmt.Sprintf("no record for user %s", target), requester)
		return
	}
	afkLine := "no"
	if afk {
		if d, err := e.activity.AfkDuration(target, now); err == nil {
			afkLine = fmt.Sprintf("yes (away %dh)", int(d.Hours()))
		}
	}
	muteLine := "no"
	if muted {
		if e.mutes.IsPermanent(target) {
			muteLine = "permanently silenced"
		} else {
			muteLine = fmt.Sprintf("temporarily muted (%d minute(s) remaining)", e.mutes.RemainingMinutes(target, now))
		}
	}
	role := "regular user"
	if e.isAuthorized(target) {
		role = "admin (may use privileged commands)"
	}
	info := strings.Join([]string{
		fmt.Sprintf("   user %s:", target),
		fmt.Sprintf("messages: %d", e.activity.Count(target)),
		"afk: " + afkLine,
		"muted: " + muteLine,
		"role: " + role,
	}, "\n")
	e.send.SendChat(info, requester)
}

// truncate shortens s to at most n runes, marking cut text with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}
