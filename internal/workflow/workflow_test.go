package workflow

import (
	"reflect"
	"testing"
	"time"
)

func TestAdvanceThroughAllStages(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	state := State{Current: First()}

	var err error
	for i := 0; i < 4; i++ {
		state, err = Advance(state, now.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("Advance error: %v", err)
		}
	}
	if state.Current != ProposalSent {
		t.Fatalf("expected proposal_sent after four advances, got %s", state.Current)
	}
	if state.Completed {
		t.Fatalf("project must not be completed before the terminal advance")
	}

	state, err = Advance(state, now.Add(5*time.Hour))
	if err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if state.Current != ProposalSent {
		t.Fatalf("terminal advance must keep current step, got %s", state.Current)
	}
	if !state.Completed {
		t.Fatalf("expected completed project")
	}
	if len(state.CompletedAt) != len(Steps) {
		t.Fatalf("expected completion time for every stage, got %d", len(state.CompletedAt))
	}
	for _, st := range Statuses(state) {
		if st.Status != StatusCompleted {
			t.Fatalf("expected %s completed, got %s", st.Step, st.Status)
		}
	}
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	state := State{Current: RFPReceived, CompletedAt: map[Step]time.Time{}}
	if _, err := Advance(state, time.Now()); err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if len(state.CompletedAt) != 0 {
		t.Fatalf("input map was mutated")
	}
}

func TestAdvanceUnknownStep(t *testing.T) {
	if _, err := Advance(State{Current: "nope"}, time.Now()); err != ErrUnknownStep {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}

func TestJumpIsPermissive(t *testing.T) {
	state, err := Jump(State{Current: RFPReceived}, ProposalCreated)
	if err != nil {
		t.Fatalf("Jump error: %v", err)
	}
	if state.Current != ProposalCreated {
		t.Fatalf("expected proposal_created, got %s", state.Current)
	}

	state, err = Jump(state, QuestionsFormulated)
	if err != nil {
		t.Fatalf("Jump back error: %v", err)
	}
	if state.Current != QuestionsFormulated {
		t.Fatalf("expected questions_formulated, got %s", state.Current)
	}

	if _, err := Jump(state, "unknown"); err != ErrUnknownStep {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}

func TestStatusesPartition(t *testing.T) {
	got := Statuses(State{Current: CustomerMeeting})
	want := []Status{StatusCompleted, StatusCompleted, StatusInProgress, StatusPending, StatusPending}
	for i, st := range got {
		if st.Status != want[i] {
			t.Fatalf("step %s: expected %s, got %s", st.Step, want[i], st.Status)
		}
	}
}

func TestStatusesIdempotent(t *testing.T) {
	state := State{Current: ProposalCreated, CompletedAt: map[Step]time.Time{RFPReceived: time.Unix(100, 0)}}
	first := Statuses(state)
	second := Statuses(state)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("statuses differ between calls")
	}
	if first[0].CompletedAt == nil {
		t.Fatalf("expected completion timestamp on first stage")
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("customer_meeting"); err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, err := Parse("Customer_Meeting"); err == nil {
		t.Fatalf("expected error for unknown identifier")
	}
}
