package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to
// operate. The real App type satisfies this interface; tests can
// provide a lightweight stub.
type execIface interface {
	Save(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	Fetch(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Stats(ctx context.Context) error
}

// runREPL reads a line at a time, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop
// continues; a failed command never ends the session.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner, out io.Writer) {
	fmt.Fprintln(out, "Hippo object store (type 'help' for commands)")

	for {
		fmt.Fprint(out, "hippo> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			fmt.Fprintln(out, "Available commands: save <file> [content-type], get <reference> [outfile], fetch <id>, sync, stats, exit")

		case "save":
			err = a.Save(ctx, args)

		case "get":
			err = a.Get(ctx, args)

		case "fetch":
			err = a.Fetch(ctx, args)

		case "sync":
			err = a.Sync(ctx)

		case "stats":
			err = a.Stats(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}
