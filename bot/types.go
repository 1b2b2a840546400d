// Package bot contains the command routing core: the subscription manager,
// per-channel subscriptions, and the feature capability set they dispatch to.
package bot

import "context"

// Info describes the sender of one chat command.
type Info struct {
	// Channel is the lowercase channel the message was sent in.
	Channel string
	// Username is the sender's lowercase login name. A user's own channel
	// has the same name, which is what makes them its broadcaster.
	Username    string
	DisplayName string
}

// IsBroadcaster reports whether the sender owns the channel the message was
// sent in.
func (i Info) IsBroadcaster() bool {
	return i.Username == i.Channel
}

// ChatSink is the outbound chat transport.
type ChatSink interface {
	Say(channel, message string)
	Join(channel string)
	Part(channel string)
}

// NotificationSink pushes feature state changes to connected UI clients
// watching (channel, featureID).
type NotificationSink interface {
	Publish(channel, featureID string, n Notification)
}

// NotificationType tags the Notification union.
type NotificationType string

const (
	// NotificationQuiz is the catch-up snapshot sent to newly connected
	// clients: the current question, or nil when no quiz is running.
	NotificationQuiz        NotificationType = "QUIZ"
	NotificationQuizStarted NotificationType = "QUIZ_STARTED"
	NotificationQuizEnded   NotificationType = "QUIZ_ENDED"
	NotificationQuizGuessed NotificationType = "QUIZ_GUESSED"
	NotificationTest        NotificationType = "TEST"
)

// Notification is the tagged union pushed over the notification sink.
type Notification struct {
	Type    NotificationType `json:"type"`
	Payload any              `json:"payload"`
}

// UserRecord is one persisted subscription: a channel and the feature ids it
// has enabled.
type UserRecord struct {
	Channel    string
	FeatureIDs []string
}

// SubscriptionStore persists which channels are subscribed and which
// features each has enabled. Implemented by db.SubscriptionStore.
type SubscriptionStore interface {
	Users(ctx context.Context) ([]UserRecord, error)
	AddUser(ctx context.Context, channel string) error
	RemoveUser(ctx context.Context, channel string) error
	AddFeature(ctx context.Context, channel, featureID string) error
	RemoveFeature(ctx context.Context, channel, featureID string) error
}
