package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Scan(ctx context.Context, raw string) error
	ScanPass(ctx context.Context) error
	Sync(ctx context.Context) error
	Download(ctx context.Context) error
	Upload(ctx context.Context) error
	Stats(ctx context.Context) error
	Gates(ctx context.Context) error
	SetGate(ctx context.Context, id string) error
	Recent(ctx context.Context) error
	Archive(ctx context.Context) error
	Token(ctx context.Context) error
}

const helpText = `Available commands:
  scan <payload>   check a single-line QR payload at the active gate
  pass             paste a multi-line pass, end with a line holding "."
  gate <id>        switch the active gate
  gates            list gate profiles
  sync             download entries and upload pending scans
  download         refresh the entry cache
  upload           upload pending scans
  stats            show local counters
  recent           show the latest decisions
  archive          archive old uploaded scans now
  token            enter a new access token
  exit             leave the scanner`

// runREPL reads one command per line and dispatches it to a. The first
// token is the command; for "scan" the remainder of the line is the payload
// verbatim. The loop exits on EOF, on "exit"/"quit" or when ctx is done.
//
// Errors returned by command handlers are ignored here; handlers report
// their own outcome to the operator.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("scan> %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "":
			// ignore blank lines

		case "help", "?":
			printlnFn(helpText)

		case "s", "scan":
			_ = a.Scan(ctx, rest)

		case "pass":
			_ = a.ScanPass(ctx)

		case "gate":
			if rest == "" {
				printlnFn("Usage: gate <id>")
				continue
			}
			_ = a.SetGate(ctx, rest)

		case "gates":
			_ = a.Gates(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "download":
			_ = a.Download(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "recent":
			_ = a.Recent(ctx)

		case "archive":
			_ = a.Archive(ctx)

		case "token":
			_ = a.Token(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
