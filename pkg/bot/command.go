// Package bot implements the conversational command layer: parsing user
// messages, dispatching commands, and driving the multi-step token
// creation flow. Output is plain text handed to a transport the caller
// supplies.
package bot

import "strings"

// Command is a parsed user message: a lowercased verb plus raw arguments.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a message on whitespace and lowercases the verb.
// A leading slash is tolerated so both "buy" and "/buy" work. Empty
// input parses to ok=false.
func ParseCommand(input string) (Command, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return Command{}, false
	}
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	if name == "" {
		return Command{}, false
	}
	return Command{Name: name, Args: parts[1:]}, true
}
