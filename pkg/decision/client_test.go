package decision

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

// scriptedAgent records the fake-clock time of every call and replays a
// scripted sequence of errors before succeeding.
type scriptedAgent struct {
	clock    *fakeClock
	errs     []error
	calls    int
	callTime []time.Time
}

func (a *scriptedAgent) Decide(_ context.Context, _ Request) (string, error) {
	a.callTime = append(a.callTime, a.clock.Now())
	a.calls++
	if len(a.errs) > 0 {
		err := a.errs[0]
		a.errs = a.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return `{"action": "hold", "quantity": 0}`, nil
}

func newTestClient(agent Agent, clock Clock) *Client {
	return NewClient(agent, DefaultConfig(), clock, zap.NewNop())
}

func TestClientNeverExceedsWindowCap(t *testing.T) {
	clock := newFakeClock()
	agent := &scriptedAgent{clock: clock}
	client := newTestClient(agent, clock)

	req := Request{Ticker: "TEST"}
	for i := 0; i < 25; i++ {
		client.GetDecision(context.Background(), req)
	}

	// No rolling 60-second window may contain more than 8 calls.
	window := 60 * time.Second
	for i := range agent.callTime {
		count := 0
		for j := i; j < len(agent.callTime); j++ {
			if agent.callTime[j].Sub(agent.callTime[i]) < window {
				count++
			}
		}
		if count > 8 {
			t.Fatalf("window starting at call %d contains %d calls, cap is 8", i, count)
		}
	}
}

// Retried attempts are real calls and must respect the window cap too: after
// seven clean decisions, a decision that fails twice before succeeding issues
// calls 8, 9 and 10, and calls 9 and 10 have to wait for the window to roll.
func TestClientWindowCapHoldsAcrossRetries(t *testing.T) {
	clock := newFakeClock()
	agent := &scriptedAgent{clock: clock}
	client := newTestClient(agent, clock)

	req := Request{Ticker: "TEST"}
	for i := 0; i < 7; i++ {
		client.GetDecision(context.Background(), req)
	}
	agent.errs = []error{errors.New("boom"), errors.New("boom"), nil}
	rec := client.GetDecision(context.Background(), req)
	if rec.Action != ActionHold {
		t.Fatalf("decision = %+v", rec)
	}
	if agent.calls != 10 {
		t.Fatalf("calls = %d, want 10", agent.calls)
	}

	window := 60 * time.Second
	for i := range agent.callTime {
		count := 0
		for j := i; j < len(agent.callTime); j++ {
			if agent.callTime[j].Sub(agent.callTime[i]) < window {
				count++
			}
		}
		if count > 8 {
			t.Fatalf("window starting at call %d contains %d calls, cap is 8", i, count)
		}
	}
}

func TestClientEnforcesMinSpacing(t *testing.T) {
	clock := newFakeClock()
	agent := &scriptedAgent{clock: clock}
	client := newTestClient(agent, clock)

	for i := 0; i < 5; i++ {
		client.GetDecision(context.Background(), Request{Ticker: "TEST"})
	}
	for i := 1; i < len(agent.callTime); i++ {
		gap := agent.callTime[i].Sub(agent.callTime[i-1])
		if gap < 6*time.Second {
			t.Fatalf("gap between call %d and %d is %v, want >= 6s", i-1, i, gap)
		}
	}
}

func TestClientRetriesThenDegrades(t *testing.T) {
	clock := newFakeClock()
	agent := &scriptedAgent{
		clock: clock,
		errs:  []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
	}
	client := newTestClient(agent, clock)

	rec := client.GetDecision(context.Background(), Request{Ticker: "TEST"})
	if rec.Action != ActionHold || rec.Quantity != 0 {
		t.Fatalf("degraded decision = %+v, want hold/0", rec)
	}
	if agent.calls != 3 {
		t.Fatalf("calls = %d, want 3 attempts", agent.calls)
	}
}

func TestClientRecoversWithinAttemptBudget(t *testing.T) {
	clock := newFakeClock()
	agent := &scriptedAgent{
		clock: clock,
		errs:  []error{errors.New("boom"), nil},
	}
	client := newTestClient(agent, clock)

	before := clock.Now()
	rec := client.GetDecision(context.Background(), Request{Ticker: "TEST"})
	if rec.Action != ActionHold {
		t.Fatalf("decision = %+v", rec)
	}
	if agent.calls != 2 {
		t.Fatalf("calls = %d, want 2", agent.calls)
	}
	// Exponential backoff: the retry waits at least the base delay.
	if clock.Now().Sub(before) < time.Second {
		t.Fatal("expected a backoff delay before the retry")
	}
}

func TestClientRateLimitCooldownDoesNotConsumeAttempts(t *testing.T) {
	clock := newFakeClock()
	agent := &scriptedAgent{
		clock: clock,
		errs: []error{
			fmt.Errorf("decide: %w", ErrRateLimited),
			fmt.Errorf("decide: %w", ErrRateLimited),
			fmt.Errorf("decide: %w", ErrRateLimited),
			errors.New("boom"),
			nil,
		},
	}
	client := newTestClient(agent, clock)

	before := clock.Now()
	rec := client.GetDecision(context.Background(), Request{Ticker: "TEST"})
	if rec.Action != ActionHold {
		t.Fatalf("decision = %+v", rec)
	}
	// Three cooldowns plus one plain failure still leave attempts to succeed.
	if agent.calls != 5 {
		t.Fatalf("calls = %d, want 5", agent.calls)
	}
	if clock.Now().Sub(before) < 3*60*time.Second {
		t.Fatal("expected three 60s cooldowns to have elapsed")
	}
}

func TestClientCancelledContext(t *testing.T) {
	clock := newFakeClock()
	agent := &scriptedAgent{clock: clock}
	client := newTestClient(agent, clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := client.GetDecision(ctx, Request{Ticker: "TEST"})
	if rec.Action != ActionHold || agent.calls != 0 {
		t.Fatalf("cancelled context should return safe default without calling, got %+v after %d calls", rec, agent.calls)
	}
}
