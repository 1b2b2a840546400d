package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/onnwee/quizbot/bot"
	"github.com/onnwee/quizbot/failure"
	"github.com/onnwee/quizbot/telemetry"
)

// LeaderboardPosition is one distinct score tier; tied usernames share it.
type LeaderboardPosition struct {
	Score     int
	Usernames []string
}

// Leaderboard holds up to the top three distinct score tiers, descending.
type Leaderboard struct {
	Positions []LeaderboardPosition
}

// ScoreStore persists and aggregates quiz scores. Implemented by
// db.ScoreStore.
type ScoreStore interface {
	IncrementScore(ctx context.Context, channel, username string, delta int) error
	ChannelScore(ctx context.Context, channel, username string) (int, error)
	GlobalScore(ctx context.Context, username string) (int, error)
	ChannelLeaderboard(ctx context.Context, channel string) (Leaderboard, error)
	GlobalLeaderboard(ctx context.Context) (Leaderboard, error)
}

const helpText = "Usage: " +
	"!quiz - starts a quiz | " +
	"!quiz-stop - stops the current quiz | " +
	"!answer <value> - answers the current quiz question | " +
	"!quiz-score [global] - get your channel or global score | " +
	"!quiz-leaderboard [global] - get the channel or global leaderboard | " +
	"!quiz-help - print this message"

// Feature is the quiz feature: one shared instance serving every channel
// that enabled it, with per-channel state kept inside the engine.
type Feature struct {
	ctx    context.Context
	engine *Engine
	scores ScoreStore
	chat   bot.ChatSink
	notify bot.NotificationSink
}

func NewFeature(ctx context.Context, engine *Engine, scores ScoreStore, chat bot.ChatSink, notify bot.NotificationSink) *Feature {
	return &Feature{ctx: ctx, engine: engine, scores: scores, chat: chat, notify: notify}
}

func (f *Feature) ID() string { return "quiz" }

func (f *Feature) Setup(ctx context.Context) error { return f.engine.Setup() }

// AddChannel is a no-op: sessions are created on the first !quiz.
func (f *Feature) AddChannel(channel string) {}

// RemoveChannel force-stops any in-progress round so no orphaned session
// survives the feature being disabled.
func (f *Feature) RemoveChannel(channel string) {
	if answer, live := f.engine.ForgetChannel(channel); live {
		f.notify.Publish(channel, f.ID(), bot.Notification{
			Type:    bot.NotificationQuizEnded,
			Payload: answerPayload{Answer: answer},
		})
	}
}

// InitialNotification is the catch-up snapshot for a newly connected UI
// client: the current question, or nil when the channel is idle.
func (f *Feature) InitialNotification(channel string) bot.Notification {
	payload := questionPayload{}
	if q, live := f.engine.Question(channel); live {
		payload.Question = &q
	}
	return bot.Notification{Type: bot.NotificationQuiz, Payload: payload}
}

func (f *Feature) HandleCommand(command string, params []string, info bot.Info) {
	switch command {
	case "!quiz":
		f.handleStart(info)
	case "!quiz-stop":
		f.handleStop(info)
	case "!answer":
		f.handleAnswer(params, info)
	case "!quiz-score":
		f.handleScore(params, info)
	case "!quiz-leaderboard":
		f.handleLeaderboard(params, info)
	case "!quiz-help":
		f.chat.Say(info.Channel, helpText)
	}
}

type questionPayload struct {
	Question *string `json:"question"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

func (f *Feature) handleStart(info bot.Info) {
	question, err := f.engine.Start(info.Channel, info.IsBroadcaster())
	if err != nil {
		f.chat.Say(info.Channel, startFailureReply(err))
		return
	}
	telemetry.Count(telemetry.QuizzesStarted)
	f.chat.Say(info.Channel, fmt.Sprintf("Quiz time! %s Answer with !answer <value>", question))
	f.notify.Publish(info.Channel, f.ID(), bot.Notification{
		Type:    bot.NotificationQuizStarted,
		Payload: questionPayload{Question: &question},
	})
}

func (f *Feature) handleStop(info bot.Info) {
	answer, err := f.engine.Stop(info.Channel, info.IsBroadcaster())
	if err != nil {
		f.chat.Say(info.Channel, stopFailureReply(err))
		return
	}
	telemetry.Count(telemetry.QuizzesStopped)
	f.chat.Say(info.Channel, fmt.Sprintf("Nobody guessed the correct answer, it was %q!", answer))
	f.notify.Publish(info.Channel, f.ID(), bot.Notification{
		Type:    bot.NotificationQuizEnded,
		Payload: answerPayload{Answer: answer},
	})
}

func (f *Feature) handleAnswer(params []string, info bot.Info) {
	guess := strings.Join(params, " ")
	answer, matched, err := f.engine.Evaluate(info.Channel, guess)
	if err != nil {
		f.chat.Say(info.Channel, "No quiz is in progress")
		return
	}
	if !matched {
		telemetry.Count(telemetry.WrongAnswers)
		f.chat.Say(info.Channel, fmt.Sprintf("Wrong @%s! Give it another try :)", info.DisplayName))
		return
	}

	telemetry.Count(telemetry.QuizzesGuessed)
	// The point is awarded best-effort: the reply goes out even if the
	// write fails, which trades durability for chat responsiveness.
	if err := f.scores.IncrementScore(f.ctx, info.Channel, info.Username, 1); err != nil {
		telemetry.Count(telemetry.StoreWriteFails)
		slog.Error("failed to award quiz point", slog.String("channel", info.Channel), slog.String("user", info.Username), slog.Any("err", err))
	}
	f.chat.Say(info.Channel, fmt.Sprintf("You guessed it @%s, the answer was %q!", info.DisplayName, answer))
	f.notify.Publish(info.Channel, f.ID(), bot.Notification{
		Type:    bot.NotificationQuizGuessed,
		Payload: answerPayload{Answer: answer},
	})
}

func (f *Feature) handleScore(params []string, info bot.Info) {
	global := len(params) > 0 && params[0] == "global"

	var score int
	var err error
	if global {
		score, err = f.scores.GlobalScore(f.ctx, info.Username)
	} else {
		score, err = f.scores.ChannelScore(f.ctx, info.Channel, info.Username)
	}
	if err != nil {
		slog.Error("failed to read score", slog.String("user", info.Username), slog.Any("err", err))
		f.chat.Say(info.Channel, "Could not fetch your score, try again later :(")
		return
	}

	if global {
		f.chat.Say(info.Channel, fmt.Sprintf("@%s, your current global score is %d", info.DisplayName, score))
	} else {
		f.chat.Say(info.Channel, fmt.Sprintf("@%s, your current score is %d", info.DisplayName, score))
	}
}

func (f *Feature) handleLeaderboard(params []string, info bot.Info) {
	global := len(params) > 0 && params[0] == "global"

	var lb Leaderboard
	var err error
	if global {
		lb, err = f.scores.GlobalLeaderboard(f.ctx)
	} else {
		lb, err = f.scores.ChannelLeaderboard(f.ctx, info.Channel)
	}
	if err != nil {
		slog.Error("failed to read leaderboard", slog.String("channel", info.Channel), slog.Any("err", err))
		f.chat.Say(info.Channel, "Could not fetch the leaderboard, try again later :(")
		return
	}

	if global {
		f.chat.Say(info.Channel, "Global leaderboard: "+formatLeaderboard(lb))
	} else {
		f.chat.Say(info.Channel, "Leaderboard: "+formatLeaderboard(lb))
	}
}

func formatLeaderboard(lb Leaderboard) string {
	if len(lb.Positions) == 0 {
		return "No one has played yet :("
	}
	parts := make([]string, 0, len(lb.Positions))
	for i, pos := range lb.Positions {
		parts = append(parts, fmt.Sprintf("%d. %s (%d)", i+1, strings.Join(pos.Usernames, ", "), pos.Score))
	}
	return strings.Join(parts, " ")
}

func startFailureReply(err error) string {
	switch {
	case errors.Is(err, failure.ErrPermissionDenied):
		return "You don't have permissions to start a quiz :("
	case errors.Is(err, failure.ErrAlreadyInProgress):
		return "A quiz is already in progress"
	default:
		return "Could not start a quiz, try again later :("
	}
}

func stopFailureReply(err error) string {
	switch {
	case errors.Is(err, failure.ErrPermissionDenied):
		return "You don't have permissions to stop the quiz :("
	case errors.Is(err, failure.ErrNoQuizInProgress):
		return "No quiz is in progress"
	default:
		return "Could not stop the quiz, try again later :("
	}
}
