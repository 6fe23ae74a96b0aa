// Package triage turns per-message analysis results into the ordered
// batch of tickets the operator reviews.
package triage

import (
	"sort"

	"github.com/nhle/mail-triage/internal/model"
)

// Input is the full set of per-message results for one unread message.
type Input struct {
	EmailID  string
	Content  model.Content
	Analysis model.Analysis
	Draft    string
}

// Build creates exactly one ticket per input, in input (fetch) order.
// Degraded inputs still yield tickets: sentinel analysis values and the
// fallback draft flow through unchanged, so no message is ever dropped.
func Build(inputs []Input) []*model.Ticket {
	tickets := make([]*model.Ticket, 0, len(inputs))
	for _, in := range inputs {
		tickets = append(tickets, &model.Ticket{
			EmailID:   in.EmailID,
			Subject:   in.Content.Subject,
			Sender:    in.Content.Sender,
			Urgency:   in.Analysis.Urgency,
			Reasoning: in.Analysis.Reasoning,
			Summary:   in.Analysis.Summary,
			Response:  in.Draft,
		})
	}
	return tickets
}

// SortByUrgency orders tickets most urgent first (High, Medium, Low,
// Unknown). The sort is stable: tickets of equal urgency keep their
// relative fetch order.
func SortByUrgency(tickets []*model.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].Urgency.Rank() < tickets[j].Urgency.Rank()
	})
}
