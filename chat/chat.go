// Package chat wraps the Twitch IRC client: it connects with the bot's
// credentials, joins the home channel, turns inbound messages into
// (command, params, sender) triples, and provides the outbound say/join/part
// primitives the routing core uses.
package chat

import (
	"context"
	"log/slog"
	"strings"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/quizbot/bot"
	"github.com/onnwee/quizbot/config"
)

// Client is the chat transport. It satisfies bot.ChatSink.
type Client struct {
	irc  *twitch.Client
	home string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		irc:  twitch.NewClient(cfg.BotUsername, cfg.OAuthToken),
		home: cfg.HomeChannel,
	}
}

// OnCommand registers the handler for inbound chat commands. Messages that
// are not commands are dropped here. go-twitch-irc invokes the callback
// from its reader goroutine, so commands are handled one at a time.
func (c *Client) OnCommand(handle func(command string, params []string, info bot.Info)) {
	c.irc.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		command, params, ok := ParseCommand(msg.Message)
		if !ok {
			return
		}
		info := bot.Info{
			Channel:     strings.ToLower(msg.Channel),
			Username:    strings.ToLower(msg.User.Name),
			DisplayName: msg.User.DisplayName,
		}
		handle(command, params, info)
	})
}

// ParseCommand splits a message into its leading !command and parameters.
// The first token must begin with '!'; everything else is a parameter.
func ParseCommand(message string) (command string, params []string, ok bool) {
	fields := strings.Fields(message)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}

// Run joins the home channel and blocks on the IRC connection until the
// context is canceled.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := c.irc.Disconnect(); err != nil {
			slog.Warn("twitch disconnect", slog.Any("err", err))
		}
		close(done)
	}()

	c.irc.Join(c.home)
	if err := c.irc.Connect(); err != nil && ctx.Err() == nil {
		return err
	}
	<-done
	return nil
}

func (c *Client) Say(channel, message string) {
	c.irc.Say(channel, message)
	slog.Debug("say", slog.String("channel", channel), slog.String("message", message), slog.String("component", "chat"))
}

func (c *Client) Join(channel string) {
	c.irc.Join(channel)
	slog.Info("joined channel", slog.String("channel", channel), slog.String("component", "chat"))
}

func (c *Client) Part(channel string) {
	c.irc.Depart(channel)
	slog.Info("parted channel", slog.String("channel", channel), slog.String("component", "chat"))
}
