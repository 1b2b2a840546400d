package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/onnwee/quizbot/registry"
)

// Subscription is the per-channel aggregate of enabled features plus the
// broadcaster's administrative commands. Subscriptions hold references to
// the shared catalog instances, never copies.
type Subscription struct {
	ctx      context.Context
	channel  string
	features *registry.Registry[Feature]
	catalog  *Catalog
	store    SubscriptionStore
	chat     ChatSink
}

// NewSubscription restores a subscription with the given enabled feature
// ids. Unknown ids (features removed from the bot since the row was
// written) are skipped with a warning.
func NewSubscription(ctx context.Context, channel string, catalog *Catalog, store SubscriptionStore, chat ChatSink, featureIDs []string) *Subscription {
	s := &Subscription{
		ctx:      ctx,
		channel:  channel,
		features: registry.New[Feature](),
		catalog:  catalog,
		store:    store,
		chat:     chat,
	}
	for _, id := range featureIDs {
		feature, ok := catalog.Get(id)
		if !ok {
			slog.Warn("persisted feature no longer exists", slog.String("channel", channel), slog.String("feature", id))
			continue
		}
		if err := s.features.Add(id, feature); err != nil {
			slog.Warn("duplicate persisted feature row", slog.String("channel", channel), slog.String("feature", id))
			continue
		}
		feature.AddChannel(channel)
	}
	return s
}

func (s *Subscription) Channel() string { return s.channel }

// FeatureIDs returns the enabled feature ids in enablement order.
func (s *Subscription) FeatureIDs() []string { return s.features.Keys() }

// HandleCommand evaluates the broadcaster's administrative commands, then
// unconditionally fans the command out to every enabled feature. Features
// ignore commands they do not recognize, so the admin commands pass through
// them harmlessly.
func (s *Subscription) HandleCommand(command string, params []string, info Info) {
	if s.channel != info.Channel {
		return
	}

	if info.IsBroadcaster() {
		switch command {
		case "!features":
			s.handleListFeatures()
		case "!add-feature":
			if len(params) > 0 {
				s.handleAddFeature(params[0])
			}
		case "!add-all-features":
			s.handleAddAllFeatures()
		case "!remove-feature":
			if len(params) > 0 {
				s.handleRemoveFeature(params[0])
			}
		case "!remove-all-features":
			s.handleRemoveAllFeatures()
		}
	}

	s.features.ForEach(func(_ string, feature Feature) {
		feature.HandleCommand(command, params, info)
	})
}

// Clear disables every feature: each one forgets this channel, its
// persisted enablement row is deleted, and the registry is emptied.
func (s *Subscription) Clear() {
	s.features.ForEach(func(id string, feature Feature) {
		feature.RemoveChannel(s.channel)
		if err := s.store.RemoveFeature(s.ctx, s.channel, id); err != nil {
			slog.Error("failed to delete feature row", slog.String("channel", s.channel), slog.String("feature", id), slog.Any("err", err))
		}
	})
	s.features.Clear()
}

func (s *Subscription) handleListFeatures() {
	list := strings.Join(s.features.Keys(), ", ")
	if list == "" {
		list = "<none>"
	}
	s.chat.Say(s.channel, "Features: "+list)
}

func (s *Subscription) handleAddFeature(id string) {
	feature, ok := s.catalog.Get(id)
	if !ok || s.features.Has(id) {
		return
	}
	if err := s.features.Add(id, feature); err != nil {
		return
	}
	// Reply before the write is confirmed; a crash here loses the row but
	// never the chat-visible state. Accepted tradeoff for a chat bot.
	if err := s.store.AddFeature(s.ctx, s.channel, id); err != nil {
		slog.Error("failed to persist feature row", slog.String("channel", s.channel), slog.String("feature", id), slog.Any("err", err))
	}
	feature.AddChannel(s.channel)
	s.chat.Say(s.channel, "Feature \""+id+"\" added!")
}

func (s *Subscription) handleAddAllFeatures() {
	s.catalog.ForEach(func(feature Feature) {
		id := feature.ID()
		if s.features.Has(id) {
			return
		}
		if err := s.features.Add(id, feature); err != nil {
			return
		}
		if err := s.store.AddFeature(s.ctx, s.channel, id); err != nil {
			slog.Error("failed to persist feature row", slog.String("channel", s.channel), slog.String("feature", id), slog.Any("err", err))
		}
		feature.AddChannel(s.channel)
	})
	s.chat.Say(s.channel, "All features added!")
}

func (s *Subscription) handleRemoveFeature(id string) {
	if feature, ok := s.features.Get(id); ok {
		feature.RemoveChannel(s.channel)
		if err := s.store.RemoveFeature(s.ctx, s.channel, id); err != nil {
			slog.Error("failed to delete feature row", slog.String("channel", s.channel), slog.String("feature", id), slog.Any("err", err))
		}
		if err := s.features.Remove(id); err != nil {
			slog.Error("failed to remove feature", slog.String("channel", s.channel), slog.String("feature", id), slog.Any("err", err))
		}
	}
	// Confirmation regardless of whether it was enabled.
	s.chat.Say(s.channel, "Feature \""+id+"\" removed!")
}

func (s *Subscription) handleRemoveAllFeatures() {
	s.Clear()
	s.chat.Say(s.channel, "All features removed!")
}
