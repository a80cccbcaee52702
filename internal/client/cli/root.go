package cli

import (
	"context"
	"fmt"
)

// Root greets the user, checks a restored session and runs the REPL until
// the user leaves.
func (a *App) Root(ctx context.Context) {
	printlnFn(fmt.Sprintf("jars client for %s (type 'help' for commands)", a.target))

	if a.isLoggedIn() {
		_ = a.Touch(ctx)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
