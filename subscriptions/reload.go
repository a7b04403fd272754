package subscriptions

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	ConfirmEmoji = "✅"
	CancelEmoji  = "❌"

	DefaultReloadTimeout = 300 * time.Second
)

var ErrPromptPending = errors.New("a reload prompt is already waiting for an answer")

type FlowState int

const (
	Idle FlowState = iota
	AwaitingConfirmation
)

type Outcome int

const (
	Confirmed Outcome = iota + 1
	Cancelled
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed out"
	}
	return "unknown"
}

// Reaction is a reaction added to a message, as seen by the flow.
type Reaction struct {
	MessageID string
	UserID    string
	Emoji     string
	Bot       bool
}

// ReloadFlow waits for a moderator to confirm or cancel a reload prompt.
// Only one prompt can be pending at a time.
type ReloadFlow struct {
	timeout time.Duration

	mu        sync.Mutex
	state     FlowState
	messageID string
	// early holds reactions offered after Arm but before Bind.
	early     []Reaction
	reactions chan Reaction
}

func NewReloadFlow(timeout time.Duration) *ReloadFlow {
	if timeout <= 0 {
		timeout = DefaultReloadTimeout
	}
	return &ReloadFlow{timeout: timeout}
}

func (f *ReloadFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Arm starts listening for answers before the prompt message is known.
// Reactions offered until Bind are held and matched against the message
// passed to Bind.
func (f *ReloadFlow) Arm() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Idle {
		return ErrPromptPending
	}
	f.state = AwaitingConfirmation
	f.messageID = ""
	f.early = nil
	f.reactions = make(chan Reaction, 1)
	return nil
}

// Bind sets the prompt message of an armed flow and replays the reactions
// held since Arm.
func (f *ReloadFlow) Bind(messageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != AwaitingConfirmation {
		return
	}
	f.messageID = messageID
	early := f.early
	f.early = nil
	for _, r := range early {
		if f.offerLocked(r) {
			return
		}
	}
}

// Disarm returns the flow to idle, dropping any unread answer.
func (f *ReloadFlow) Disarm() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Idle
	f.messageID = ""
	f.early = nil
	f.reactions = nil
}

// Offer hands a reaction to the pending prompt. It reports whether the
// reaction was taken as the answer, or held until the prompt message is
// bound. Reactions by bots, on other messages or with other emoji are
// ignored, as is anything after the first answer.
func (f *ReloadFlow) Offer(r Reaction) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != AwaitingConfirmation || r.Bot {
		return false
	}
	if r.Emoji != ConfirmEmoji && r.Emoji != CancelEmoji {
		return false
	}
	if f.messageID == "" {
		f.early = append(f.early, r)
		return true
	}
	return f.offerLocked(r)
}

func (f *ReloadFlow) offerLocked(r Reaction) bool {
	if r.MessageID != f.messageID {
		return false
	}
	select {
	case f.reactions <- r:
		return true
	default:
		return false
	}
}

// Wait blocks until the armed prompt is answered, the timeout elapses or ctx
// is done. The flow is idle again when Wait returns.
func (f *ReloadFlow) Wait(ctx context.Context) (Outcome, Reaction, error) {
	f.mu.Lock()
	ch := f.reactions
	f.mu.Unlock()
	defer f.Disarm()
	if ch == nil {
		return 0, Reaction{}, errors.New("reload flow is not armed")
	}

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.Emoji == ConfirmEmoji {
			return Confirmed, r, nil
		}
		return Cancelled, r, nil
	case <-timer.C:
		return TimedOut, Reaction{}, nil
	case <-ctx.Done():
		return 0, Reaction{}, ctx.Err()
	}
}

// Await arms the flow for messageID and waits for the answer.
func (f *ReloadFlow) Await(ctx context.Context, messageID string) (Outcome, Reaction, error) {
	if err := f.Arm(); err != nil {
		return 0, Reaction{}, err
	}
	f.Bind(messageID)
	return f.Wait(ctx)
}
