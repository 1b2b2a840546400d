package bot

import (
	"context"
	"sync"

	"github.com/onnwee/quizbot/registry"
)

// Feature is a pluggable, independently enable/disable-able command handling
// unit. One instance of each variant exists process-wide and is shared by
// every subscription that enabled it, so per-channel state inside a feature
// must be keyed by channel. AddChannel and RemoveChannel bracket a channel's
// lifetime inside the feature; RemoveChannel must drop any in-progress
// session for that channel.
type Feature interface {
	ID() string
	Setup(ctx context.Context) error
	HandleCommand(command string, params []string, info Info)
	AddChannel(channel string)
	RemoveChannel(channel string)
	// InitialNotification is the catch-up snapshot for a newly connected
	// UI client watching this feature on the given channel.
	InitialNotification(channel string) Notification
}

// Catalog holds the single shared instance of every supported feature,
// keyed by feature id.
type Catalog struct {
	features *registry.Registry[Feature]
}

// NewCatalog registers the given features. Feature ids must be globally
// unique.
func NewCatalog(features ...Feature) (*Catalog, error) {
	c := &Catalog{features: registry.New[Feature]()}
	for _, f := range features {
		if err := c.features.Add(f.ID(), f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) Get(id string) (Feature, bool) { return c.features.Get(id) }

func (c *Catalog) ForEach(fn func(f Feature)) {
	c.features.ForEach(func(_ string, f Feature) { fn(f) })
}

// IDs returns the feature ids in registration order.
func (c *Catalog) IDs() []string { return c.features.Keys() }

// Setup initializes every feature concurrently. All setups are attempted;
// the first failure in catalog order is returned so the outcome is
// deterministic regardless of completion order.
func (c *Catalog) Setup(ctx context.Context) error {
	ids := c.features.Keys()
	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		f, _ := c.features.Get(id)
		wg.Add(1)
		go func(i int, f Feature) {
			defer wg.Done()
			errs[i] = f.Setup(ctx)
		}(i, f)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// TestFeature is the trivial demo variant: it replies to !test and keeps no
// per-channel state.
type TestFeature struct {
	chat ChatSink
}

func NewTestFeature(chat ChatSink) *TestFeature {
	return &TestFeature{chat: chat}
}

func (f *TestFeature) ID() string                      { return "test" }
func (f *TestFeature) Setup(ctx context.Context) error { return nil }
func (f *TestFeature) AddChannel(channel string)       {}
func (f *TestFeature) RemoveChannel(channel string)    {}

func (f *TestFeature) HandleCommand(command string, params []string, info Info) {
	if command == "!test" {
		f.chat.Say(info.Channel, "Hello world!")
	}
}

func (f *TestFeature) InitialNotification(channel string) Notification {
	return Notification{Type: NotificationTest}
}
