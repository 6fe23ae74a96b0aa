package triage

import (
	"testing"

	"github.com/nhle/mail-triage/internal/model"
)

func input(id string, urgency model.Urgency) Input {
	return Input{
		EmailID: id,
		Content: model.Content{Subject: "subj-" + id, Sender: id + "@example.com"},
		Analysis: model.Analysis{
			Urgency:   urgency,
			Reasoning: "reasoning",
			Summary:   "summary",
		},
		Draft: "draft",
	}
}

func TestBuildPreservesCount(t *testing.T) {
	inputs := []Input{
		input("1", model.UrgencyLow),
		input("2", model.UrgencyUnknown), // degraded message still present
		input("3", model.UrgencyHigh),
	}

	tickets := Build(inputs)

	if len(tickets) != len(inputs) {
		t.Fatalf("len(tickets) = %d; want %d", len(tickets), len(inputs))
	}
	for i, ticket := range tickets {
		if ticket.EmailID != inputs[i].EmailID {
			t.Errorf("ticket %d has EmailID %q; want fetch order preserved", i, ticket.EmailID)
		}
		if ticket.Sent {
			t.Errorf("ticket %d starts with Sent = true", i)
		}
	}
}

func TestSortByUrgencyOrdersByRank(t *testing.T) {
	tickets := Build([]Input{
		input("1", model.UrgencyLow),
		input("2", model.UrgencyUnknown),
		input("3", model.UrgencyHigh),
		input("4", model.UrgencyMedium),
	})

	SortByUrgency(tickets)

	for i := 0; i < len(tickets)-1; i++ {
		if tickets[i].Urgency.Rank() > tickets[i+1].Urgency.Rank() {
			t.Errorf("tickets[%d] (%s) ranked after tickets[%d] (%s)",
				i, tickets[i].Urgency, i+1, tickets[i+1].Urgency)
		}
	}

	if tickets[0].EmailID != "3" {
		t.Errorf("most urgent ticket is %q; want the High one", tickets[0].EmailID)
	}
	if tickets[len(tickets)-1].EmailID != "2" {
		t.Errorf("last ticket is %q; want the Unknown one", tickets[len(tickets)-1].EmailID)
	}
}

func TestSortByUrgencyIsStable(t *testing.T) {
	tickets := Build([]Input{
		input("1", model.UrgencyMedium),
		input("2", model.UrgencyHigh),
		input("3", model.UrgencyMedium),
		input("4", model.UrgencyMedium),
		input("5", model.UrgencyHigh),
	})

	SortByUrgency(tickets)

	var gotOrder []string
	for _, ticket := range tickets {
		gotOrder = append(gotOrder, ticket.EmailID)
	}

	// Equal urgencies keep their fetch order.
	want := []string{"2", "5", "1", "3", "4"}
	for i := range want {
		if gotOrder[i] != want[i] {
			t.Fatalf("order = %v; want %v", gotOrder, want)
		}
	}
}

func TestSortByUrgencyEmptyBatch(t *testing.T) {
	tickets := Build(nil)
	SortByUrgency(tickets)

	if len(tickets) != 0 {
		t.Errorf("len(tickets) = %d; want 0", len(tickets))
	}
}
