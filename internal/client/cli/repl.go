package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests use a stub.
type execIface interface {
	Add(ctx context.Context, paths []string) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) error
	Upload(ctx context.Context, parentID string, fields []string) error
	Retry(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	Status(ctx context.Context) error
	Attachments(ctx context.Context, parentID string) error
}

const helpText = "Available commands: add <path...>, remove <id>, list, upload <parent-id> [name=value...], " +
	"retry <id>, cancel <id>, status, attachments <parent-id>, exit"

// runREPL reads commands from scanner until EOF or "exit"/"quit".
//
// Errors returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("upload %s> ", statusFn()))
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
			printlnFn(helpText)

		case "add":
			if len(args) == 0 {
				printlnFn("Usage: add <path...>")
				continue
			}
			err = a.Add(ctx, args)

		case "remove", "rm":
			if len(args) != 1 {
				printlnFn("Usage: remove <id>")
				continue
			}
			err = a.Remove(ctx, args[0])

		case "l", "list":
			err = a.List(ctx)

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <parent-id> [name=value...]")
				continue
			}
			err = a.Upload(ctx, args[0], args[1:])

		case "retry":
			if len(args) != 1 {
				printlnFn("Usage: retry <id>")
				continue
			}
			err = a.Retry(ctx, args[0])

		case "cancel":
			if len(args) != 1 {
				printlnFn("Usage: cancel <id>")
				continue
			}
			err = a.Cancel(ctx, args[0])

		case "status":
			err = a.Status(ctx)

		case "attachments":
			if len(args) != 1 {
				printlnFn("Usage: attachments <parent-id>")
				continue
			}
			err = a.Attachments(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
