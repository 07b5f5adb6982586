package tui

import "strings"

// Command represents a parsed command.
type Command struct {
	Name string
	Args []string
}

var aliases = map[string]string{
	"q": "quit",
	"h": "help",
	"s": "search",
}

// ParseCommand parses a command string (without the leading ':'). Names are
// lower-cased and short aliases expanded; arguments split on whitespace.
func ParseCommand(input string) Command {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Command{}
	}
	name := strings.ToLower(fields[0])
	if full, ok := aliases[name]; ok {
		name = full
	}
	return Command{Name: name, Args: fields[1:]}
}

// Rest joins the arguments back into one string, for free-text commands.
func (c Command) Rest() string {
	return strings.Join(c.Args, " ")
}
