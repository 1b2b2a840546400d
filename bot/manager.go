package bot

import (
	"context"
	"log/slog"

	"github.com/onnwee/quizbot/registry"
	"github.com/onnwee/quizbot/telemetry"
)

// Manager is the top-level router. It owns the channel -> Subscription
// registry, handles !join / !leave in the bot's home chat, and forwards all
// tenant-channel traffic to the owning subscription.
type Manager struct {
	ctx     context.Context
	home    string
	subs    *registry.Registry[*Subscription]
	catalog *Catalog
	store   SubscriptionStore
	chat    ChatSink
}

func NewManager(ctx context.Context, home string, catalog *Catalog, store SubscriptionStore, chat ChatSink) *Manager {
	return &Manager{
		ctx:     ctx,
		home:    home,
		subs:    registry.New[*Subscription](),
		catalog: catalog,
		store:   store,
		chat:    chat,
	}
}

// Setup reconstructs one subscription per persisted user row and joins each
// restored channel. A store failure aborts startup; a half-restored
// subscription set must never be treated as ready.
func (m *Manager) Setup() error {
	users, err := m.store.Users(m.ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		sub := NewSubscription(m.ctx, user.Channel, m.catalog, m.store, m.chat, user.FeatureIDs)
		if err := m.subs.Add(user.Channel, sub); err != nil {
			return err
		}
		m.chat.Join(user.Channel)
	}
	telemetry.SetSubscriptions(m.subs.Len())
	slog.Info("subscriptions restored", slog.Int("count", m.subs.Len()), slog.String("component", "bot"))
	return nil
}

// Get returns the subscription for a channel, if any.
func (m *Manager) Get(channel string) (*Subscription, bool) {
	return m.subs.Get(channel)
}

// Route dispatches one inbound command. Tenant-channel traffic goes to the
// owning subscription (or is dropped silently); in the home chat only
// !join and !leave mean anything.
func (m *Manager) Route(command string, params []string, info Info) {
	telemetry.CountCommand()

	if info.Channel != m.home {
		if sub, ok := m.subs.Get(info.Channel); ok {
			sub.HandleCommand(command, params, info)
		}
		return
	}

	switch command {
	case "!join":
		m.handleJoin(info)
	case "!leave":
		m.handleLeave(info)
	}
}

func (m *Manager) handleJoin(info Info) {
	if m.subs.Has(info.Username) {
		m.chat.Say(info.Channel, info.DisplayName+" is already joined!")
		return
	}
	sub := NewSubscription(m.ctx, info.Username, m.catalog, m.store, m.chat, nil)
	if err := m.subs.Add(info.Username, sub); err != nil {
		slog.Error("failed to register subscription", slog.String("channel", info.Username), slog.Any("err", err))
		return
	}
	if err := m.store.AddUser(m.ctx, info.Username); err != nil {
		slog.Error("failed to persist user row", slog.String("channel", info.Username), slog.Any("err", err))
	}
	m.chat.Join(info.Username)
	m.chat.Say(info.Channel, info.DisplayName+" has joined!")
	telemetry.SetSubscriptions(m.subs.Len())
}

func (m *Manager) handleLeave(info Info) {
	sub, ok := m.subs.Get(info.Username)
	if !ok {
		m.chat.Say(info.Channel, info.DisplayName+" is not joined!")
		return
	}
	sub.Clear()
	if err := m.subs.Remove(info.Username); err != nil {
		slog.Error("failed to remove subscription", slog.String("channel", info.Username), slog.Any("err", err))
	}
	if err := m.store.RemoveUser(m.ctx, info.Username); err != nil {
		slog.Error("failed to delete user row", slog.String("channel", info.Username), slog.Any("err", err))
	}
	m.chat.Part(info.Username)
	m.chat.Say(info.Channel, info.DisplayName+" has left!")
	telemetry.SetSubscriptions(m.subs.Len())
}
