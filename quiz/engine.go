package quiz

import (
	"sync"

	"github.com/onnwee/quizbot/failure"
	"github.com/onnwee/quizbot/registry"
)

// Engine is the per-channel quiz state machine. Each channel is either Idle
// (no entry in sessions) or InProgress (one active session). The engine is
// the single owner of session state; chat commands mutate it from the IRC
// goroutine while SSE snapshots read it from HTTP goroutines, hence the
// lock.
type Engine struct {
	mu        sync.RWMutex
	sessions  map[string]*session
	countries *registry.Registry[Country]
	shapes    *registry.Registry[shape]
}

func NewEngine() *Engine {
	shapes := registry.New[shape]()
	for _, s := range []shape{capitalShape(), flagShape(), continentShape(), languageShape()} {
		// Construction data is static; a duplicate kind is a programmer error.
		_ = shapes.Add(s.kind, s)
	}
	return &Engine{
		sessions: make(map[string]*session),
		shapes:   shapes,
	}
}

// Setup loads the content catalog. An empty catalog is fatal here rather
// than at the first !quiz.
func (e *Engine) Setup() error {
	countries, err := loadCountries()
	if err != nil {
		return failure.Wrap(err, "engine.Setup", "failed to load quiz content")
	}
	e.mu.Lock()
	e.countries = countries
	e.mu.Unlock()
	return nil
}

// Start transitions a channel from Idle to InProgress and returns the
// question. Fact and shape are independent uniform draws.
func (e *Engine) Start(channel string, requesterIsBroadcaster bool) (string, error) {
	if !requesterIsBroadcaster {
		return "", failure.New(failure.KindPermissionDenied, "engine.Start", "only the broadcaster can start a quiz")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, live := e.sessions[channel]; live {
		return "", failure.New(failure.KindAlreadyInProgress, "engine.Start", "a quiz is already in progress")
	}
	if e.countries == nil {
		return "", failure.New(failure.KindEmptyCollection, "engine.Start", "quiz content not loaded")
	}

	country, err := e.countries.RandomPick()
	if err != nil {
		return "", failure.Wrap(err, "engine.Start", "failed to pick a fact")
	}
	sh, err := e.shapes.RandomPick()
	if err != nil {
		return "", failure.Wrap(err, "engine.Start", "failed to pick a quiz shape")
	}

	s := sh.build(country)
	e.sessions[channel] = s
	return s.question, nil
}

// Stop aborts a channel's round and returns the answer that was expected.
func (e *Engine) Stop(channel string, requesterIsBroadcaster bool) (string, error) {
	if !requesterIsBroadcaster {
		return "", failure.New(failure.KindPermissionDenied, "engine.Stop", "only the broadcaster can stop the quiz")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s, live := e.sessions[channel]
	if !live {
		return "", failure.New(failure.KindNoQuizInProgress, "engine.Stop", "no quiz is in progress")
	}
	delete(e.sessions, channel)
	return s.answer, nil
}

// Evaluate checks a guess against the channel's live session. On a match it
// retires the session and returns (answer, true); on a mismatch the session
// stays live and it returns ("", false). A mismatch is not an error, a
// retry is expected.
func (e *Engine) Evaluate(channel, rawAnswer string) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, live := e.sessions[channel]
	if !live {
		return "", false, failure.New(failure.KindNoQuizInProgress, "engine.Evaluate", "no quiz is in progress")
	}
	if !s.accepts(Normalize(rawAnswer)) {
		return "", false, nil
	}
	delete(e.sessions, channel)
	return s.answer, true, nil
}

// Question returns the current question for a channel, if any.
func (e *Engine) Question(channel string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, live := e.sessions[channel]
	if !live {
		return "", false
	}
	return s.question, true
}

// ForgetChannel force-stops any round for the channel, e.g. when the quiz
// feature is disabled there. It reports whether a round was live and the
// answer it expected.
func (e *Engine) ForgetChannel(channel string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, live := e.sessions[channel]
	if !live {
		return "", false
	}
	delete(e.sessions, channel)
	return s.answer, true
}
