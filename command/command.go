// Package command parses the line oriented PUT/GET language
// and replays it against a [contentcache.Cache].
//
// Grammar (one command per line, blank lines ignored):
//
//	PUT: <key>\ Max-Age: <seconds>
//	GET: <key>
//
// The backslash after a PUT key is optional.
package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type constError string

// ErrSyntax is returned for lines that are not valid commands.
const ErrSyntax = constError("syntax error")

func (errStr constError) Error() string { return string(errStr) }

// Op is the verb of a [Command].
type Op uint8

const (
	Put Op = iota + 1
	Get
)

func (op Op) String() string {
	switch op {
	case Put:
		return "PUT"
	case Get:
		return "GET"
	default:
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
}

// Command is a single parsed line.
type Command struct {
	Key string
	// TTL is only set for [Put].
	TTL time.Duration
	Op  Op
}

const (
	putPrefix    = "PUT:"
	getPrefix    = "GET:"
	maxAgeMarker = "Max-Age:"
)

func (c Command) String() string {
	if c.Op == Put {
		return fmt.Sprintf("%s %s\\ %s %d",
			putPrefix, c.Key, maxAgeMarker, int64(c.TTL/time.Second))
	}
	return getPrefix + " " + c.Key
}

// Parse parses one command line.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, putPrefix):
		return parsePut(line[len(putPrefix):])
	case strings.HasPrefix(line, getPrefix):
		key, err := parseKey(line[len(getPrefix):])
		if err != nil {
			return Command{}, err
		}
		return Command{Op: Get, Key: key}, nil
	default:
		return Command{}, syntaxError("unknown command", line)
	}
}

func parsePut(args string) (Command, error) {
	keyPart, agePart, found := strings.Cut(args, maxAgeMarker)
	if !found {
		return Command{}, syntaxError("missing "+maxAgeMarker, args)
	}
	key, err := parseKey(strings.TrimRight(strings.TrimSpace(keyPart), `\`))
	if err != nil {
		return Command{}, err
	}
	ageText := strings.TrimSpace(agePart)
	seconds, err := strconv.ParseUint(ageText, 10, 31)
	if err != nil {
		return Command{}, fmt.Errorf("%w: max age %q: %w", ErrSyntax, ageText, err)
	}
	return Command{
		Op:  Put,
		Key: key,
		TTL: time.Duration(seconds) * time.Second,
	}, nil
}

func parseKey(text string) (string, error) {
	key := strings.TrimSpace(text)
	switch {
	case key == "":
		return "", syntaxError("missing key", text)
	case strings.ContainsAny(key, " \t"):
		return "", syntaxError("key contains whitespace", key)
	}
	return key, nil
}

func syntaxError(reason, text string) error {
	return fmt.Errorf("%w: %s: %q", ErrSyntax, reason, text)
}
