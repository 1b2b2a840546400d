package bot

import (
	"context"
	"fmt"
	"sync"
)

// fakeChat records outbound chat effects.
type fakeChat struct {
	mu    sync.Mutex
	says  []string
	joins []string
	parts []string
}

func (c *fakeChat) Say(channel, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.says = append(c.says, channel+": "+message)
}

func (c *fakeChat) Join(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joins = append(c.joins, channel)
}

func (c *fakeChat) Part(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parts = append(c.parts, channel)
}

func (c *fakeChat) lastSay() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.says) == 0 {
		return ""
	}
	return c.says[len(c.says)-1]
}

func (c *fakeChat) sayCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.says)
}

// fakeStore is an in-memory SubscriptionStore with error injection.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]bool
	features map[string][]string
	usersErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]bool{}, features: map[string][]string{}}
}

func (s *fakeStore) Users(ctx context.Context) ([]UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	var out []UserRecord
	for channel := range s.users {
		out = append(out, UserRecord{Channel: channel, FeatureIDs: s.features[channel]})
	}
	return out, nil
}

func (s *fakeStore) AddUser(ctx context.Context, channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[channel] = true
	return nil
}

func (s *fakeStore) RemoveUser(ctx context.Context, channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, channel)
	delete(s.features, channel)
	return nil
}

func (s *fakeStore) AddFeature(ctx context.Context, channel, featureID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features[channel] = append(s.features[channel], featureID)
	return nil
}

func (s *fakeStore) RemoveFeature(ctx context.Context, channel, featureID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.features[channel]
	for i, id := range rows {
		if id == featureID {
			s.features[channel] = append(rows[:i], rows[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) featureRows(channel string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.features[channel]...)
}

func (s *fakeStore) hasUser(channel string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[channel]
}

// fakeFeature records lifecycle calls and fanned-out commands.
type fakeFeature struct {
	id       string
	setupErr error

	mu       sync.Mutex
	channels map[string]bool
	commands []string
}

func newFakeFeature(id string) *fakeFeature {
	return &fakeFeature{id: id, channels: map[string]bool{}}
}

func (f *fakeFeature) ID() string { return f.id }

func (f *fakeFeature) Setup(ctx context.Context) error { return f.setupErr }

func (f *fakeFeature) HandleCommand(command string, params []string, info Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, fmt.Sprintf("%s@%s", command, info.Channel))
}

func (f *fakeFeature) AddChannel(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[channel] = true
}

func (f *fakeFeature) RemoveChannel(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, channel)
}

func (f *fakeFeature) InitialNotification(channel string) Notification {
	return Notification{Type: NotificationTest}
}

func (f *fakeFeature) hasChannel(channel string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channels[channel]
}

func (f *fakeFeature) commandCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.commands)
}
