// Package app wires the pipeline together: fetch unread messages,
// normalize and analyze each one, build the sorted ticket batch, and
// hand it to the interactive review loop.
package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"go.uber.org/zap"

	"github.com/nhle/mail-triage/internal/ai"
	"github.com/nhle/mail-triage/internal/audit"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/normalize"
	"github.com/nhle/mail-triage/internal/review"
	"github.com/nhle/mail-triage/internal/triage"
)

// MailboxSession is the single stateful mailbox resource of a run. It is
// acquired before Run and released by Run exactly once.
type MailboxSession interface {
	ListUnseen(ctx context.Context) ([]imap.UID, error)
	Fetch(ctx context.Context, uid imap.UID) ([]byte, error)
	MarkSeen(ctx context.Context, uid imap.UID) error
	Logout() error
}

// AnalysisService classifies and drafts. Both methods degrade to
// sentinel values internally and never fail.
type AnalysisService interface {
	Analyze(ctx context.Context, subject, body string) model.Analysis
	Draft(ctx context.Context, subject, body string) string
}

// Options collects the collaborators for one run.
type Options struct {
	Session  MailboxSession
	AI       AnalysisService
	Mailer   review.Mailer
	Prompter review.Prompter

	// Journal is optional; a nil journal disables the SQLite trail.
	Journal *audit.Journal

	Logger *zap.Logger
	Out    io.Writer

	// Throttle is the pause between per-message service calls.
	Throttle time.Duration
}

// App runs the email-to-ticket pipeline once.
type App struct {
	opts Options
}

// New creates an App from the given options.
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &App{opts: opts}
}

// Run processes the batch: list unread, build one ticket per message,
// sort by urgency, review interactively. The session is logged out
// exactly once, whatever happens after it was acquired. Per-message
// failures degrade the affected ticket; only a broken interactive
// session aborts the run.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.opts.Session.Logout(); err != nil {
			a.opts.Logger.Warn("mailbox logout failed", zap.Error(err))
		} else {
			a.opts.Logger.Info("disconnected from mailbox")
		}
	}()

	uids, err := a.opts.Session.ListUnseen(ctx)
	if err != nil {
		return fmt.Errorf("listing unread messages: %w", err)
	}

	if len(uids) == 0 {
		fmt.Fprintln(a.opts.Out, "No unread emails found.")
		a.opts.Logger.Info("no unread emails found")
		a.record(ctx, "no_unread", "", "", "")
		return nil
	}

	inputs := make([]triage.Input, 0, len(uids))
	for i, uid := range uids {
		inputs = append(inputs, a.processMessage(ctx, uid))

		// Pace the remote service between messages.
		if a.opts.Throttle > 0 && i < len(uids)-1 {
			time.Sleep(a.opts.Throttle)
		}
	}

	tickets := triage.Build(inputs)
	triage.SortByUrgency(tickets)

	// The reviewer journals each sent reply itself, at send time, so the
	// trail survives a batch aborted partway.
	var recorder review.Recorder
	if a.opts.Journal != nil {
		recorder = a.opts.Journal
	}

	reviewer := review.New(
		a.opts.Mailer,
		&seenMarker{session: a.opts.Session},
		a.opts.Prompter,
		recorder,
		a.opts.Out,
		a.opts.Logger,
	)
	return reviewer.Run(ctx, tickets)
}

// processMessage turns one unread message into a triage input. Every
// failure path still yields an input, so the ticket count always equals
// the unread count.
func (a *App) processMessage(ctx context.Context, uid imap.UID) triage.Input {
	emailID := strconv.FormatUint(uint64(uid), 10)

	raw, err := a.opts.Session.Fetch(ctx, uid)
	if err != nil {
		fmt.Fprintf(a.opts.Out, "Error fetching message %s: %v\n", emailID, err)
		a.opts.Logger.Error("fetching message failed",
			zap.String("email_id", emailID),
			zap.Error(err),
		)
		a.record(ctx, "fetch_failed", emailID, "", err.Error())

		return triage.Input{
			EmailID: emailID,
			Analysis: model.Analysis{
				Urgency:   model.UrgencyUnknown,
				Reasoning: fmt.Sprintf("Fetch failed: %v", err),
				Summary:   "Unable to summarize due to fetch failure",
			},
			Draft: ai.FallbackDraft,
		}
	}

	content := normalize.Message(raw)
	analysis := a.opts.AI.Analyze(ctx, content.Subject, content.Body)
	draft := a.opts.AI.Draft(ctx, content.Subject, content.Body)

	a.record(ctx, "message_processed", emailID, content.Subject, string(analysis.Urgency))

	return triage.Input{
		EmailID:  emailID,
		Content:  content,
		Analysis: analysis,
		Draft:    draft,
	}
}

// record appends a journal event, tolerating an absent journal and
// logging (but not propagating) journal write failures.
func (a *App) record(ctx context.Context, name, emailID, subject, detail string) {
	if a.opts.Journal == nil {
		return
	}
	if err := a.opts.Journal.Record(ctx, name, emailID, subject, detail); err != nil {
		a.opts.Logger.Warn("audit journal write failed",
			zap.String("event", name),
			zap.Error(err),
		)
	}
}

// seenMarker adapts the session's UID-based MarkSeen to the review
// loop's string email IDs.
type seenMarker struct {
	session MailboxSession
}

func (m *seenMarker) MarkSeen(ctx context.Context, emailID string) error {
	uid, err := strconv.ParseUint(emailID, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid email UID %q: %w", emailID, err)
	}
	return m.session.MarkSeen(ctx, imap.UID(uid))
}
