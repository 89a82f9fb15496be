package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptForInput writes label to out and reads one line from in. The
// trailing newline and surrounding whitespace are stripped.
func PromptForInput(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(input), nil
}

// PromptForConfirmation asks a yes/no question. If autoApprove is true, it
// returns true without prompting.
func PromptForConfirmation(in io.Reader, out io.Writer, autoApprove bool, action, details string) (bool, error) {
	if autoApprove {
		return true, nil
	}
	fmt.Fprintf(out, "\nAbout to %s: %s\n", action, details)

	input, err := PromptForInput(in, out, "Are you sure you want to continue? (yes/no)")
	if err != nil {
		return false, fmt.Errorf("failed to read user confirmation: %w", err)
	}
	input = strings.ToLower(input)
	return input == "yes" || input == "y", nil
}
