package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

func (a *App) getStatus() string {
	sum := a.session.Summary()
	s := fmt.Sprintf("%s %d selected", a.config.Kind, len(a.session.Selected()))
	if sum.Total > 0 && !sum.Done() {
		s += fmt.Sprintf(", uploading %d/%d", sum.Succeeded+sum.Failed, sum.Total)
		if q := a.session.Queued(); q > 0 {
			s += fmt.Sprintf(", %d queued", q)
		}
	}
	return fmt.Sprintf("(%s)", s)
}

// Run reads commands from in until EOF or exit, then closes the app.
func (a *App) Run(ctx context.Context, in io.Reader) {
	defer a.Close()

	printlnFn("Attachment upload client (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(in))
}
