package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/codecredits/internal/client/guard"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs. App satisfies it; tests
// provide a stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Exec(ctx context.Context, name string, args []string) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// Command errors are already reported by Exec and do not stop the loop. The
// loop ends on EOF, on "exit"/"quit", or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("codecredits%s> ", prefixSpace(statusFn())))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(helpText(a.isLoggedIn(), a.isAdmin()))
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			_ = a.Exec(ctx, cmd, args)
		}
	}
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

// helpText lists the commands the guard would allow right now.
func helpText(loggedIn, admin bool) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range commands {
		if !guard.Resolve(c.route, loggedIn, admin).Allow {
			continue
		}
		fmt.Fprintf(&b, "  %-55s %s\n", c.usage, c.short)
	}
	fmt.Fprintf(&b, "  %-55s %s", "exit | quit", "leave the program")
	return b.String()
}
