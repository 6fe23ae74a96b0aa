package model

// Content is the normalized plain-text view of a raw mailbox message.
// It is derived once per message and never mutated afterward.
type Content struct {
	// Subject is the decoded Subject header.
	Subject string

	// Sender is the verbatim From header value, possibly including a
	// display name. Address extraction happens at send time, not here.
	Sender string

	// Body is the selected plain-text body.
	Body string
}

// Analysis holds the urgency classification produced by the analysis
// service. Every field is always populated: failures are represented by
// the Unknown urgency and explanatory text, never by empty values.
type Analysis struct {
	Urgency   Urgency
	Reasoning string
	Summary   string
}

// Ticket is the per-message aggregate the operator reviews. Response is
// the only field mutated during review (a full replacement on edit);
// Sent transitions false to true at most once, when a send succeeds.
type Ticket struct {
	EmailID   string
	Subject   string
	Sender    string
	Urgency   Urgency
	Reasoning string
	Summary   string
	Response  string
	Sent      bool
}
