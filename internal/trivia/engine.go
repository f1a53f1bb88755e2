// Package trivia runs K9's trivia rounds: one question per channel, answered by
// replying to the bot's message, rewarded through the point ledger.
package trivia

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hunterjsb/k9/internal/logger"
	"github.com/hunterjsb/k9/internal/metrics"
)

var (
	// ErrEmptySet is returned when there are no questions to publish.
	ErrEmptySet = errors.New("no trivia questions loaded")

	// ErrCorrelation means a reply does not target the live question of its channel.
	// It is not a fault: the message simply is not a trivia answer.
	ErrCorrelation = errors.New("reply does not answer a live trivia question")

	// ErrRoundActive is returned by Publish when the channel already has a live round.
	ErrRoundActive = errors.New("a trivia round is already running in this channel")
)

const DefaultRevealDelay = 3 * time.Second

// State is the phase of a round.
type State int

const (
	StateIdle State = iota
	StateAwaitingAnswer
	StateRewarding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateRewarding:
		return "rewarding"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Round is a snapshot of one question-to-reward cycle in a channel.
type Round struct {
	ID        uuid.UUID
	ChannelID string
	GuildID   string
	MessageID string
	Question  Question
	State     State
	StartedAt time.Time
}

// Messenger posts and edits chat messages.
type Messenger interface {
	Post(ctx context.Context, channelID, content string) (messageID string, err error)
	Edit(ctx context.Context, channelID, messageID, content string) error
}

// Ledger awards points.
type Ledger interface {
	Increment(ctx context.Context, userID, guildID string) (int, error)
}

// Reply is an inbound message that replies to a bot-authored message.
type Reply struct {
	ChannelID string
	GuildID   string // empty for direct messages
	UserID    string
	Content   string

	ReferencedMessageID string
	ReferencedContent   string
}

// Outcome describes what HandleReply did with a correlated reply.
type Outcome struct {
	Correct bool
	Awarded bool
	Score   int
	Round   Round
}

type round struct {
	Round
	publishing bool
}

// Engine coordinates rounds across channels. Rounds only share the question store
// and the ledger; the engine mutex guards state transitions and is never held
// across I/O.
type Engine struct {
	store       *QuestionStore
	ledger      Ledger
	messenger   Messenger
	metrics     *metrics.Metrics
	revealDelay time.Duration

	mu     sync.Mutex
	rounds map[string]*round

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithRevealDelay sets the pause between revealing an answer and the next question.
func WithRevealDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.revealDelay = d
		}
	}
}

// WithMetrics records round activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine. Call Close to stop pending next-question timers.
func NewEngine(store *QuestionStore, ledger Ledger, messenger Messenger, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		store:       store,
		ledger:      ledger,
		messenger:   messenger,
		revealDelay: DefaultRevealDelay,
		rounds:      make(map[string]*round),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close drops pending rounds and waits for scheduled work to stop.
func (e *Engine) Close() {
	e.mu.Lock()
	e.cancel()
	e.mu.Unlock()
	e.wg.Wait()
}

// Round returns the current round of channelID, if any.
func (e *Engine) Round(channelID string) (Round, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.rounds[channelID]
	if !ok {
		return Round{}, false
	}
	return r.Round, true
}

// Publish starts a round in channelID by posting a random question.
// guildID may be empty for direct-message channels.
func (e *Engine) Publish(ctx context.Context, channelID, guildID string) (Round, error) {
	e.mu.Lock()
	if cur, ok := e.rounds[channelID]; ok && (cur.publishing || cur.State != StateIdle) {
		e.mu.Unlock()
		return cur.Round, ErrRoundActive
	}

	q, err := e.store.PickRandom()
	if err != nil {
		e.mu.Unlock()
		return Round{}, err
	}

	r := &round{
		Round: Round{
			ID:        uuid.New(),
			ChannelID: channelID,
			GuildID:   guildID,
			Question:  q,
			State:     StateIdle,
		},
		publishing: true,
	}
	e.rounds[channelID] = r
	e.mu.Unlock()

	messageID, err := e.messenger.Post(ctx, channelID, FormatQuestion(q))

	e.mu.Lock()
	if err != nil {
		if e.rounds[channelID] == r {
			delete(e.rounds, channelID)
		}
		e.mu.Unlock()
		return Round{}, fmt.Errorf("failed to publish question: %w", err)
	}
	r.publishing = false
	r.MessageID = messageID
	r.State = StateAwaitingAnswer
	r.StartedAt = time.Now()
	snapshot := r.Round
	e.mu.Unlock()

	e.metrics.QuestionPublished()
	logger.Info("Published trivia question",
		"round", snapshot.ID, "channel", channelID, "guild", guildID, "message", messageID)

	return snapshot, nil
}

// HandleReply checks a reply against the live round of its channel. Replies that do
// not target the live question return ErrCorrelation. A wrong answer returns a zero
// Outcome and no error. A correct answer moves the round to Rewarding, awards a point
// (skipped without a guild), reveals the answer and schedules the next question.
//
// If the ledger fails the round still closes and the wrapped ledger error is returned,
// so the point is never awarded twice.
func (e *Engine) HandleReply(ctx context.Context, reply Reply) (Outcome, error) {
	q, ok := e.store.FindByText(reply.ReferencedContent)
	if !ok {
		return Outcome{}, ErrCorrelation
	}

	e.mu.Lock()
	r, ok := e.rounds[reply.ChannelID]
	if !ok || r.State != StateAwaitingAnswer ||
		r.MessageID != reply.ReferencedMessageID ||
		r.Question.Question != q.Question {
		e.mu.Unlock()
		return Outcome{}, ErrCorrelation
	}

	if !AnswerMatches(reply.Content, q.Answer) {
		snapshot := r.Round
		e.mu.Unlock()
		e.metrics.AnswerChecked(false)
		return Outcome{Round: snapshot}, nil
	}

	r.State = StateRewarding
	snapshot := r.Round
	e.mu.Unlock()
	e.metrics.AnswerChecked(true)

	outcome := Outcome{Correct: true, Round: snapshot}
	var rewardErr error
	if reply.GuildID != "" {
		score, err := e.ledger.Increment(ctx, reply.UserID, reply.GuildID)
		if err != nil {
			e.metrics.LedgerError()
			logger.Error("Failed to award trivia point",
				"round", snapshot.ID, "user", reply.UserID, "guild", reply.GuildID, "error", err)
			rewardErr = fmt.Errorf("failed to award point: %w", err)
		} else {
			outcome.Awarded = true
			outcome.Score = score
		}
	}

	if err := e.messenger.Edit(ctx, reply.ChannelID, snapshot.MessageID, FormatReveal(q, reply.UserID)); err != nil {
		logger.Warn("Failed to reveal trivia answer", "round", snapshot.ID, "channel", reply.ChannelID, "error", err)
	}

	logger.Info("Trivia question answered",
		"round", snapshot.ID, "user", reply.UserID, "guild", reply.GuildID, "score", outcome.Score)

	e.scheduleNext(snapshot)
	return outcome, rewardErr
}

// scheduleNext returns the round to Idle after the reveal delay and publishes the
// next question. Nothing is scheduled once the engine is closed.
func (e *Engine) scheduleNext(prev Round) {
	e.mu.Lock()
	if e.ctx.Err() != nil {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()

		timer := time.NewTimer(e.revealDelay)
		defer timer.Stop()
		select {
		case <-e.ctx.Done():
			return
		case <-timer.C:
		}

		e.mu.Lock()
		if cur, ok := e.rounds[prev.ChannelID]; ok && cur.ID == prev.ID {
			cur.State = StateIdle
		}
		e.mu.Unlock()

		if _, err := e.Publish(e.ctx, prev.ChannelID, prev.GuildID); err != nil {
			logger.Error("Failed to publish next trivia question", "channel", prev.ChannelID, "error", err)
		}
	}()
}

// FormatQuestion is the message text of a published question. It is the question
// text itself, so a reply can be correlated through FindByText.
func FormatQuestion(q Question) string {
	return q.Question
}

// FormatReveal is the edited text of an answered question.
func FormatReveal(q Question, userID string) string {
	return fmt.Sprintf("%s\n✅ The answer was **%s**, answered by <@%s>", q.Question, q.Answer, userID)
}
