// Package review drives the interactive confirm/edit/send pass over a
// sorted batch of tickets.
package review

import (
	"context"
	"fmt"
	"io"
	"net/mail"

	"go.uber.org/zap"

	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/outbound"
)

// Mailer delivers a composed reply.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SeenMarker flips the read-state of the originating message. It is
// invoked only after a successful send.
type SeenMarker interface {
	MarkSeen(ctx context.Context, emailID string) error
}

// Prompter collects the operator's decisions. Implementations must keep
// asking until a valid answer is given; Confirm and Input return an
// error only when the interactive session itself is broken.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(title string) (bool, error)

	// Input collects free-form replacement text.
	Input(title string) (string, error)
}

// Recorder appends an audit trail event. Events are recorded the moment
// a reply goes out, so the trail stays accurate even when the batch is
// aborted partway.
type Recorder interface {
	Record(ctx context.Context, name, emailID, subject, detail string) error
}

// Reviewer walks the operator through each ticket in order.
type Reviewer struct {
	mailer   Mailer
	marker   SeenMarker
	prompter Prompter
	recorder Recorder
	out      io.Writer
	logger   *zap.Logger
}

// New creates a reviewer writing its per-ticket reports to out. A nil
// recorder disables the audit trail.
func New(
	mailer Mailer,
	marker SeenMarker,
	prompter Prompter,
	recorder Recorder,
	out io.Writer,
	logger *zap.Logger,
) *Reviewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reviewer{
		mailer:   mailer,
		marker:   marker,
		prompter: prompter,
		recorder: recorder,
		out:      out,
		logger:   logger,
	}
}

// Run processes every ticket sequentially: present, optionally edit,
// optionally send. A delivery failure is reported and isolated; only a
// broken prompter aborts the loop. Sending marks the originating
// message read; declining leaves it unread for a future run.
func (r *Reviewer) Run(ctx context.Context, tickets []*model.Ticket) error {
	for i, ticket := range tickets {
		fmt.Fprint(r.out, renderTicket(i+1, ticket))

		edit, err := r.prompter.Confirm("Edit response?")
		if err != nil {
			return fmt.Errorf("reading edit decision: %w", err)
		}
		if edit {
			replacement, err := r.prompter.Input("Enter new response")
			if err != nil {
				return fmt.Errorf("reading replacement response: %w", err)
			}
			ticket.Response = replacement
			r.logger.Info("operator edited response",
				zap.String("email_id", ticket.EmailID),
				zap.String("subject", ticket.Subject),
			)
		}

		send, err := r.prompter.Confirm("Send response?")
		if err != nil {
			return fmt.Errorf("reading send decision: %w", err)
		}
		if !send {
			continue
		}

		r.sendTicket(ctx, ticket)
	}

	return nil
}

// sendTicket delivers one reply and, on success, marks the originating
// message read. Failures are printed and logged but never abort the
// batch.
func (r *Reviewer) sendTicket(ctx context.Context, ticket *model.Ticket) {
	to := BareAddress(ticket.Sender)

	if err := r.mailer.Send(ctx, to, ticket.Subject, ticket.Response); err != nil {
		fmt.Fprintf(r.out, "Error sending response: %v\n", err)
		// Delivery failures are an expected, isolated outcome; anything
		// else from the mailer is a genuine fault.
		if outbound.IsDeliveryError(err) {
			r.logger.Warn("delivery failed, message left unread",
				zap.String("email_id", ticket.EmailID),
				zap.String("to", to),
				zap.Error(err),
			)
		} else {
			r.logger.Error("sending response failed",
				zap.String("email_id", ticket.EmailID),
				zap.String("to", to),
				zap.Error(err),
			)
		}
		return
	}

	ticket.Sent = true
	fmt.Fprintf(r.out, "Response sent to %s\n", to)
	r.logger.Info("response sent",
		zap.String("email_id", ticket.EmailID),
		zap.String("to", to),
	)
	r.recordSent(ctx, ticket, to)

	if err := r.marker.MarkSeen(ctx, ticket.EmailID); err != nil {
		fmt.Fprintf(r.out, "Warning: could not mark message as read: %v\n", err)
		r.logger.Error("marking message as read failed",
			zap.String("email_id", ticket.EmailID),
			zap.Error(err),
		)
		return
	}

	r.logger.Info("marked message as read",
		zap.String("email_id", ticket.EmailID),
	)
}

// recordSent journals a delivered reply. Journal write failures are
// logged but never interrupt the review.
func (r *Reviewer) recordSent(ctx context.Context, ticket *model.Ticket, to string) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(ctx, "response_sent", ticket.EmailID, ticket.Subject, to); err != nil {
		r.logger.Warn("audit journal write failed",
			zap.String("event", "response_sent"),
			zap.String("email_id", ticket.EmailID),
			zap.Error(err),
		)
	}
}

// BareAddress extracts the address portion of a From header value. When
// nothing usable can be extracted, the raw sender string is used
// verbatim as the destination.
func BareAddress(sender string) string {
	addr, err := mail.ParseAddress(sender)
	if err != nil || addr.Address == "" {
		return sender
	}
	return addr.Address
}
