package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitForState(t *testing.T, f *ReloadFlow, want FlowState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("flow never reached state %v", want)
		}
		time.Sleep(time.Millisecond)
	}
}

type awaitResult struct {
	outcome Outcome
	r       Reaction
	err     error
}

func startAwait(t *testing.T, f *ReloadFlow, ctx context.Context, messageID string) chan awaitResult {
	t.Helper()
	if err := f.Arm(); err != nil {
		t.Fatalf("Arm returned error: %v", err)
	}
	f.Bind(messageID)
	done := make(chan awaitResult, 1)
	go func() {
		o, r, err := f.Wait(ctx)
		done <- awaitResult{o, r, err}
	}()
	return done
}

func TestReloadFlowIgnoresUnrelatedReactions(t *testing.T) {
	f := NewReloadFlow(time.Minute)
	if f.Offer(Reaction{MessageID: "1", Emoji: ConfirmEmoji}) {
		t.Fatal("an idle flow should not accept reactions")
	}

	done := startAwait(t, f, context.Background(), "1")
	waitForState(t, f, AwaitingConfirmation)

	ignored := []Reaction{
		{MessageID: "1", UserID: "bot", Emoji: ConfirmEmoji, Bot: true},
		{MessageID: "2", UserID: "9", Emoji: ConfirmEmoji},
		{MessageID: "1", UserID: "9", Emoji: "👍"},
	}
	for _, r := range ignored {
		if f.Offer(r) {
			t.Errorf("reaction %+v should be ignored", r)
		}
	}

	if !f.Offer(Reaction{MessageID: "1", UserID: "9", Emoji: CancelEmoji}) {
		t.Fatal("cancel reaction should be accepted")
	}
	// Only the first answer counts.
	f.Offer(Reaction{MessageID: "1", UserID: "10", Emoji: ConfirmEmoji})

	res := <-done
	if res.err != nil || res.outcome != Cancelled || res.r.UserID != "9" {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.State() != Idle {
		t.Error("flow should be idle again")
	}
}

func TestReloadFlowHoldsEarlyReactions(t *testing.T) {
	f := NewReloadFlow(time.Minute)
	if err := f.Arm(); err != nil {
		t.Fatalf("Arm returned error: %v", err)
	}
	if err := f.Arm(); !errors.Is(err, ErrPromptPending) {
		t.Fatalf("expected ErrPromptPending, got %v", err)
	}

	f.Offer(Reaction{MessageID: "7", UserID: "9", Emoji: ConfirmEmoji})
	f.Offer(Reaction{MessageID: "8", UserID: "10", Emoji: CancelEmoji})
	if f.Offer(Reaction{MessageID: "8", UserID: "bot", Emoji: ConfirmEmoji, Bot: true}) {
		t.Error("bot reactions should be ignored before binding too")
	}
	f.Bind("8")

	outcome, r, err := f.Wait(context.Background())
	if err != nil || outcome != Cancelled || r.UserID != "10" {
		t.Fatalf("unexpected result %v %+v %v", outcome, r, err)
	}
	if f.State() != Idle {
		t.Error("flow should be idle after Wait")
	}
}

func TestReloadFlowDisarm(t *testing.T) {
	f := NewReloadFlow(time.Minute)
	if err := f.Arm(); err != nil {
		t.Fatal(err)
	}
	f.Disarm()
	if f.State() != Idle {
		t.Fatal("flow should be idle after Disarm")
	}
	if _, _, err := f.Wait(context.Background()); err == nil {
		t.Error("waiting on a flow that is not armed should fail")
	}
}

func TestReloadFlowTimeout(t *testing.T) {
	f := NewReloadFlow(10 * time.Millisecond)
	outcome, _, err := f.Await(context.Background(), "1")
	if err != nil {
		t.Fatalf("Await returned error: %v", err)
	}
	if outcome != TimedOut {
		t.Fatalf("expected TimedOut, got %v", outcome)
	}
	if f.State() != Idle {
		t.Error("flow should be idle after a timeout")
	}
}

func TestReloadFlowSinglePrompt(t *testing.T) {
	f := NewReloadFlow(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := startAwait(t, f, ctx, "1")
	waitForState(t, f, AwaitingConfirmation)

	if _, _, err := f.Await(context.Background(), "2"); !errors.Is(err, ErrPromptPending) {
		t.Fatalf("expected ErrPromptPending, got %v", err)
	}

	cancel()
	if res := <-done; !errors.Is(res.err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.err)
	}
	if f.State() != Idle {
		t.Error("flow should be idle after cancellation")
	}
}

func TestOutcomeString(t *testing.T) {
	if Confirmed.String() != "confirmed" || TimedOut.String() != "timed out" {
		t.Error("unexpected outcome names")
	}
}
