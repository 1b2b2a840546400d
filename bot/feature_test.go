package bot

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCatalogRejectsDuplicateIDs(t *testing.T) {
	if _, err := NewCatalog(newFakeFeature("quiz"), newFakeFeature("quiz")); err == nil {
		t.Fatalf("duplicate feature id accepted")
	}
}

func TestCatalogIDsInRegistrationOrder(t *testing.T) {
	catalog, err := NewCatalog(newFakeFeature("quiz"), newFakeFeature("test"))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	ids := catalog.IDs()
	if len(ids) != 2 || ids[0] != "quiz" || ids[1] != "test" {
		t.Errorf("IDs = %v", ids)
	}
}

// slowFeature delays its Setup so a later-registered feature can fail first
// in wall-clock time.
type slowFeature struct {
	fakeFeature
	delay time.Duration
}

func (f *slowFeature) Setup(ctx context.Context) error {
	time.Sleep(f.delay)
	return f.setupErr
}

func TestCatalogSetupReturnsFirstFailureInCatalogOrder(t *testing.T) {
	errFirst := errors.New("first")
	errSecond := errors.New("second")

	slow := &slowFeature{delay: 20 * time.Millisecond}
	slow.id = "a"
	slow.channels = map[string]bool{}
	slow.setupErr = errFirst

	fast := newFakeFeature("b")
	fast.setupErr = errSecond

	catalog, err := NewCatalog(slow, fast)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if got := catalog.Setup(context.Background()); got != errFirst {
		t.Errorf("Setup = %v, want the error from the first-registered feature", got)
	}
}

func TestCatalogSetupNilWhenAllSucceed(t *testing.T) {
	catalog, err := NewCatalog(newFakeFeature("quiz"), newFakeFeature("test"))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if err := catalog.Setup(context.Background()); err != nil {
		t.Errorf("Setup = %v", err)
	}
}

func TestTestFeatureRepliesToTest(t *testing.T) {
	chat := &fakeChat{}
	f := NewTestFeature(chat)
	f.HandleCommand("!test", nil, Info{Channel: "alice", Username: "bob", DisplayName: "Bob"})
	if chat.lastSay() != "alice: Hello world!" {
		t.Errorf("reply = %q", chat.lastSay())
	}
	f.HandleCommand("!quiz", nil, Info{Channel: "alice", Username: "bob", DisplayName: "Bob"})
	if chat.sayCount() != 1 {
		t.Errorf("replied to a foreign command: %v", chat.says)
	}
}
