package command

import "strings"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	// Split at first whitespace for the command word
	spaceIdx := strings.IndexAny(line, " \t")
	if spaceIdx < 0 {
		return ParseResult{
			Command: strings.ToLower(line),
		}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}

// SplitTrailingQuantity separates a trailing integer from an item reference,
// so multi-word item names need no quoting: "Rough Plank 4" yields
// ("Rough Plank", "4", true). Without a trailing integer the whole input is
// the reference.
func SplitTrailingQuantity(args []string) (ref, qty string, ok bool) {
	if len(args) < 2 {
		return strings.Join(args, " "), "", false
	}
	last := args[len(args)-1]
	if !isInteger(last) {
		return strings.Join(args, " "), "", false
	}
	return strings.Join(args[:len(args)-1], " "), last, true
}

func isInteger(s string) bool {
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
