package mailbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// ConnectionError indicates that the mailbox session could not be
// established. It is the only fatal error in a run: no tickets are
// produced when it occurs.
type ConnectionError struct {
	Addr    string
	Message string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("mailbox connection to %s failed: %s", e.Addr, e.Message)
}

// IsConnectionError reports whether err (or any error in its chain) is a
// ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// Config holds the IMAP server settings for a session.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
}

// Session is a single open IMAP connection with a folder selected. It is
// acquired once at the start of a run and must be released with Logout
// exactly once, even when processing fails partway.
type Session struct {
	client *imapclient.Client
}

// Connect dials the IMAP server, authenticates, and selects the given
// folder. Any failure is wrapped in a ConnectionError.
func Connect(_ context.Context, cfg Config, folder string) (*Session, error) {
	addr := cfg.Host + ":" + cfg.Port

	var client *imapclient.Client
	var err error

	if cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Message: err.Error()}
	}

	if err := client.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &ConnectionError{
			Addr: addr,
			Message: fmt.Sprintf(
				"authentication failed for %s: %v", cfg.Username, err,
			),
		}
	}

	if _, err := client.Select(folder, nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &ConnectionError{
			Addr:    addr,
			Message: fmt.Sprintf("selecting %s: %v", folder, err),
		}
	}

	return &Session{client: client}, nil
}

// ListUnseen returns the UIDs of all messages in the selected folder
// that do not carry the Seen flag, in mailbox order.
func (s *Session) ListUnseen(_ context.Context) ([]imap.UID, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}

	searchData, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages: %w", err)
	}

	return searchData.AllUIDs(), nil
}

// Fetch retrieves the full raw message for the given UID. The body is
// fetched with peek so the Seen flag only ever changes through MarkSeen.
func (s *Session) Fetch(_ context.Context, uid imap.UID) ([]byte, error) {
	uidSet := imap.UIDSetNum(uid)

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := s.client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("message UID %d not found", uid)
	}

	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message data: %w", err)
	}

	raw := buf.FindBodySection(bodySection)
	if raw == nil {
		return nil, fmt.Errorf("message UID %d has no body section", uid)
	}

	if err := fetchCmd.Close(); err != nil {
		return raw, fmt.Errorf("closing fetch: %w", err)
	}

	return raw, nil
}

// MarkSeen adds the Seen flag to the given message.
func (s *Session) MarkSeen(_ context.Context, uid imap.UID) error {
	uidSet := imap.UIDSetNum(uid)

	storeCmd := s.client.Store(uidSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)

	return storeCmd.Close()
}

// Logout ends the session. It is safe to call on a session whose
// connection has already dropped; the error is returned for logging.
func (s *Session) Logout() error {
	return s.client.Logout().Wait()
}
