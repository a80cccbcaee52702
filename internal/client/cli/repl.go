package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/jarsclient/internal/api"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App implements it;
// tests use a recording stub.
type execIface interface {
	isLoggedIn() bool

	Touch(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Get(ctx context.Context, linetype, id string) error
	Save(ctx context.Context) error
	Preview(ctx context.Context) error
	Delete(ctx context.Context, linetype, id string) error
	Unlink(ctx context.Context, linetype, id, parent string) error
	Fields(ctx context.Context, linetype string) error
	Record(ctx context.Context, table, id string) error

	Groups(ctx context.Context, report, prefix string, min api.MinVersion) error
	Report(ctx context.Context, report, group string, min api.MinVersion) error
	Linetypes(ctx context.Context, report string) error
	Reports(ctx context.Context) error

	H2N(ctx context.Context, hash string) error
	N2H(ctx context.Context, n string) error
	Refresh(ctx context.Context) error
	ShowVersion(ctx context.Context) error
	Call(ctx context.Context, method, path, body string) error
}

type command struct {
	usage   string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, a execIface, args []string, min api.MinVersion) error
}

var commands = map[string]command{
	"touch":  {usage: "touch", run: func(ctx context.Context, a execIface, _ []string, _ api.MinVersion) error { return a.Touch(ctx) }},
	"login":  {usage: "login", run: func(ctx context.Context, a execIface, _ []string, _ api.MinVersion) error { return a.Login(ctx) }},
	"logout": {usage: "logout", run: func(ctx context.Context, a execIface, _ []string, _ api.MinVersion) error { return a.Logout(ctx) }},
	"get": {usage: "get <linetype> <id>", minArgs: 2, maxArgs: 2,
		run: func(ctx context.Context, a execIface, args []string, _ api.MinVersion) error { return a.Get(ctx, args[0], args[1]) }},
	"save":    {usage: "save", run: func(ctx context.Context, a execIface, _ []string, _ api.MinVersion) error { return a.Save(ctx) }},
	"preview": {usage: "preview", run: func(ctx context.Context, a execIface, _ []string, _ api.MinVersion) error { return a.Preview(ctx) }},
	"delete": {usage: "delete <linetype> <id>", minArgs: 2, maxArgs: 2,
		run: func(ctx context.Context, a execIface, args []string, _ api.MinVersion) error {
			return a.Delete(ctx, args[0], args[1])
		}},
	"unlink": {usage: "unlink <linetype> <id> <parent>", minArgs: 3, maxArgs: 3,
		run: func(ctx context.Context, a execIface, args []string, _ api.MinVersion) error {
			return a.Unlink(ctx, args[0], args[1], args[2])
		}},
	"fields": {usage: "fields <linetype>", minArgs: 1, maxArgs: 1,
		run: func(ctx context.Context, a execIface, args []string, _ api.MinVersion) error { return a.Fields(ctx, args[0]) }},
	"record": {usage: "record <table> <id>", minArgs: 2, maxArgs: 2,
		run: func(ctx context.Context, a execIface, args []string, _ api.MinVersion) error {
			return a.Record(ctx, args[0], args[1])
		}},
	"groups": {usage: "groups <report> [prefix] [--fresh|--min=<version>]", minArgs: 1, maxArgs: 2,
		run: func(ctx context.Context, a execIface, args []string, min api.MinVersion) error {
			return a.Groups(ctx, args[0], optional(args, 1), min)
		}},
	"report": {usage: "report <report> [group] [--fresh|--min=<version>]", minArgs: 1, maxArgs: 2,
		run: func(ctx context.Context, a execIface, args []string, min api.MinVersion) error {
			return a.Report(ctx, args[0], optional(args, 1), min)
		}},
	"linetypes": {usage: "linetypes [report]", maxArgs: 1,
		run: func(ctx context.Context, a execIface, args []string, _ api.MinVersion) error {
			return a.Linetypes(ctx, optional(args, 0))
		}},
	"reports": {usage: "reports", run: func(ctx context.Context, a execIface, _ []string, _ api.MinVersion) error { return a.Reports(ctx) }},
	"h2n": {usage: "h2n <hash>", minArgs: 1, maxArgs: 1,
		run: func(ctx context.Context, a execIface, args []string, _ api.MinVersion) error { return a.H2N(ctx, args[0]) }},
	"n2h": {usage: "n2h <n>", minArgs: 1, maxArgs: 1,
		run: func(ctx context.Context, a execIface, args []string, _ api.MinVersion) error { return a.N2H(ctx, args[0]) }},
	"refresh": {usage: "refresh", run: func(ctx context.Context, a execIface, _ []string, _ api.MinVersion) error { return a.Refresh(ctx) }},
	"version": {usage: "version", run: func(ctx context.Context, a execIface, _ []string, _ api.MinVersion) error { return a.ShowVersion(ctx) }},
	"call": {usage: "call <METHOD> <path> [json]", minArgs: 2, maxArgs: -1,
		run: func(ctx context.Context, a execIface, args []string, _ api.MinVersion) error {
			return a.Call(ctx, strings.ToUpper(args[0]), args[1], strings.Join(args[2:], " "))
		}},
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// splitMinVersion pulls --fresh and --min=<version> out of args.
func splitMinVersion(args []string) (api.MinVersion, []string) {
	var min api.MinVersion
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "--fresh":
			min = api.CurrentVersion()
		case strings.HasPrefix(arg, "--min="):
			min = api.ExplicitVersion(strings.TrimPrefix(arg, "--min="))
		default:
			rest = append(rest, arg)
		}
	}
	return min, rest
}

func helpText(loggedIn bool) string {
	auth := "login"
	if loggedIn {
		auth = "logout"
	}
	return "Available commands: touch, " + auth + ", get, save, preview, delete, unlink, fields, record, " +
		"groups, report, linetypes, reports, h2n, n2h, refresh, version, call, help, exit"
}

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF or "exit"/"quit". Prompts for command input (credentials, JSON
// documents) read from the same reader.
//
// Argument counts are checked here; a wrong count prints the usage line and
// nothing is called. Handlers report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("jars %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name := parts[0]

		switch name {
		case "help":
			printlnFn(helpText(a.isLoggedIn()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := commands[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}

		min, args := splitMinVersion(parts[1:])
		if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
			printlnFn("Usage:", cmd.usage)
			continue
		}

		_ = cmd.run(ctx, a, args, min)
	}
}
