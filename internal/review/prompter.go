package review

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// TerminalPrompter collects decisions from the operator's terminal using
// huh forms. A form cannot yield an invalid answer, so the re-prompt
// requirement is satisfied by construction; there is no timeout and no
// default that could slip through.
type TerminalPrompter struct{}

// Confirm asks a yes/no question.
func (TerminalPrompter) Confirm(title string) (bool, error) {
	var answer bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&answer),
		),
	)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("running confirm prompt: %w", err)
	}

	return answer, nil
}

// Input collects free-form multi-line replacement text.
func (TerminalPrompter) Input(title string) (string, error) {
	var text string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Value(&text),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("running input prompt: %w", err)
	}

	return text, nil
}
