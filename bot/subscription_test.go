package bot

import (
	"context"
	"testing"
)

func newTestSubscription(t *testing.T, featureIDs []string, features ...Feature) (*Subscription, *fakeChat, *fakeStore) {
	t.Helper()
	chat := &fakeChat{}
	store := newFakeStore()
	catalog, err := NewCatalog(features...)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return NewSubscription(context.Background(), "alice", catalog, store, chat, featureIDs), chat, store
}

func broadcaster() Info {
	return Info{Channel: "alice", Username: "alice", DisplayName: "Alice"}
}

func visitor() Info {
	return Info{Channel: "alice", Username: "bob", DisplayName: "Bob"}
}

func TestAddFeatureEnablesAndPersists(t *testing.T) {
	quiz := newFakeFeature("quiz")
	sub, chat, store := newTestSubscription(t, nil, quiz)

	sub.HandleCommand("!add-feature", []string{"quiz"}, broadcaster())

	if ids := sub.FeatureIDs(); len(ids) != 1 || ids[0] != "quiz" {
		t.Errorf("FeatureIDs = %v", ids)
	}
	if !quiz.hasChannel("alice") {
		t.Errorf("feature not told about channel")
	}
	if rows := store.featureRows("alice"); len(rows) != 1 || rows[0] != "quiz" {
		t.Errorf("persisted rows = %v", rows)
	}
	if chat.lastSay() != `alice: Feature "quiz" added!` {
		t.Errorf("reply = %q", chat.lastSay())
	}
}

func TestAddFeatureByVisitorHasNoEffect(t *testing.T) {
	quiz := newFakeFeature("quiz")
	sub, _, store := newTestSubscription(t, nil, quiz)

	sub.HandleCommand("!add-feature", []string{"quiz"}, visitor())

	if len(sub.FeatureIDs()) != 0 {
		t.Errorf("visitor enabled a feature")
	}
	if len(store.featureRows("alice")) != 0 {
		t.Errorf("visitor command persisted a row")
	}
	// The command still fans out to enabled features; with none enabled
	// nothing observes it.
	if quiz.commandCount() != 0 {
		t.Errorf("disabled feature saw the command")
	}
}

func TestAddUnknownFeatureSilent(t *testing.T) {
	sub, chat, _ := newTestSubscription(t, nil, newFakeFeature("quiz"))
	sub.HandleCommand("!add-feature", []string{"karaoke"}, broadcaster())
	if chat.sayCount() != 0 {
		t.Errorf("replied to unknown feature id: %v", chat.says)
	}
}

func TestAddFeatureTwiceSilentSecondTime(t *testing.T) {
	sub, chat, store := newTestSubscription(t, nil, newFakeFeature("quiz"))
	sub.HandleCommand("!add-feature", []string{"quiz"}, broadcaster())
	sub.HandleCommand("!add-feature", []string{"quiz"}, broadcaster())
	if chat.sayCount() != 1 {
		t.Errorf("duplicate add replied again: %v", chat.says)
	}
	if rows := store.featureRows("alice"); len(rows) != 1 {
		t.Errorf("duplicate row persisted: %v", rows)
	}
}

func TestAddAllFeatures(t *testing.T) {
	quiz := newFakeFeature("quiz")
	test := newFakeFeature("test")
	sub, chat, store := newTestSubscription(t, []string{"quiz"}, quiz, test)

	sub.HandleCommand("!add-all-features", nil, broadcaster())

	if ids := sub.FeatureIDs(); len(ids) != 2 {
		t.Errorf("FeatureIDs = %v, want both", ids)
	}
	if !test.hasChannel("alice") {
		t.Errorf("test feature not enabled")
	}
	// quiz was already enabled at restore time; no second row.
	if rows := store.featureRows("alice"); len(rows) != 1 || rows[0] != "test" {
		t.Errorf("persisted rows = %v, want just test", rows)
	}
	if chat.lastSay() != "alice: All features added!" {
		t.Errorf("reply = %q", chat.lastSay())
	}
}

func TestRemoveFeature(t *testing.T) {
	quiz := newFakeFeature("quiz")
	sub, chat, _ := newTestSubscription(t, []string{"quiz"}, quiz)

	sub.HandleCommand("!remove-feature", []string{"quiz"}, broadcaster())

	if len(sub.FeatureIDs()) != 0 {
		t.Errorf("feature still enabled")
	}
	if quiz.hasChannel("alice") {
		t.Errorf("feature still tracks channel")
	}
	if chat.lastSay() != `alice: Feature "quiz" removed!` {
		t.Errorf("reply = %q", chat.lastSay())
	}
}

func TestRemoveFeatureNotEnabledStillConfirms(t *testing.T) {
	sub, chat, _ := newTestSubscription(t, nil, newFakeFeature("quiz"))
	sub.HandleCommand("!remove-feature", []string{"quiz"}, broadcaster())
	if chat.lastSay() != `alice: Feature "quiz" removed!` {
		t.Errorf("reply = %q", chat.lastSay())
	}
}

func TestRemoveAllFeatures(t *testing.T) {
	quiz := newFakeFeature("quiz")
	test := newFakeFeature("test")
	sub, chat, store := newTestSubscription(t, []string{"quiz", "test"}, quiz, test)
	// Seed rows as the restore path would have left them.
	store.features["alice"] = []string{"quiz", "test"}

	sub.HandleCommand("!remove-all-features", nil, broadcaster())

	if len(sub.FeatureIDs()) != 0 {
		t.Errorf("features survived: %v", sub.FeatureIDs())
	}
	if quiz.hasChannel("alice") || test.hasChannel("alice") {
		t.Errorf("features still track channel")
	}
	if rows := store.featureRows("alice"); len(rows) != 0 {
		t.Errorf("rows survived: %v", rows)
	}
	if chat.lastSay() != "alice: All features removed!" {
		t.Errorf("reply = %q", chat.lastSay())
	}
}

func TestListFeatures(t *testing.T) {
	sub, chat, _ := newTestSubscription(t, []string{"quiz", "test"}, newFakeFeature("quiz"), newFakeFeature("test"))
	sub.HandleCommand("!features", nil, broadcaster())
	if chat.lastSay() != "alice: Features: quiz, test" {
		t.Errorf("reply = %q", chat.lastSay())
	}
}

func TestListFeaturesEmpty(t *testing.T) {
	sub, chat, _ := newTestSubscription(t, nil, newFakeFeature("quiz"))
	sub.HandleCommand("!features", nil, broadcaster())
	if chat.lastSay() != "alice: Features: <none>" {
		t.Errorf("reply = %q", chat.lastSay())
	}
}

func TestCommandsFanOutToEnabledFeaturesOnly(t *testing.T) {
	quiz := newFakeFeature("quiz")
	test := newFakeFeature("test")
	sub, _, _ := newTestSubscription(t, []string{"quiz"}, quiz, test)

	sub.HandleCommand("!answer", []string{"bern"}, visitor())

	if quiz.commandCount() != 1 {
		t.Errorf("enabled feature never saw the command")
	}
	if test.commandCount() != 0 {
		t.Errorf("disabled feature saw the command")
	}
}

func TestAdminCommandsStillFanOut(t *testing.T) {
	quiz := newFakeFeature("quiz")
	sub, _, _ := newTestSubscription(t, []string{"quiz"}, quiz)
	sub.HandleCommand("!features", nil, broadcaster())
	if quiz.commandCount() != 1 {
		t.Errorf("admin command not forwarded to features")
	}
}

func TestForeignChannelIgnored(t *testing.T) {
	quiz := newFakeFeature("quiz")
	sub, chat, _ := newTestSubscription(t, []string{"quiz"}, quiz)
	sub.HandleCommand("!quiz", nil, Info{Channel: "carol", Username: "carol", DisplayName: "Carol"})
	if chat.sayCount() != 0 || quiz.commandCount() != 0 {
		t.Errorf("subscription acted on another channel's traffic")
	}
}

func TestRestoreSkipsUnknownFeature(t *testing.T) {
	quiz := newFakeFeature("quiz")
	sub, _, _ := newTestSubscription(t, []string{"retired", "quiz"}, quiz)
	if ids := sub.FeatureIDs(); len(ids) != 1 || ids[0] != "quiz" {
		t.Errorf("FeatureIDs = %v, want just quiz", ids)
	}
}
