package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	fail  error
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.fail
}

func (f *fakeExec) Add(ctx context.Context, paths []string) error {
	return f.record("add " + strings.Join(paths, ","))
}
func (f *fakeExec) Remove(ctx context.Context, id string) error { return f.record("remove " + id) }
func (f *fakeExec) List(ctx context.Context) error              { return f.record("list") }
func (f *fakeExec) Upload(ctx context.Context, parentID string, fields []string) error {
	return f.record("upload " + parentID + " " + strings.Join(fields, ","))
}
func (f *fakeExec) Retry(ctx context.Context, id string) error  { return f.record("retry " + id) }
func (f *fakeExec) Cancel(ctx context.Context, id string) error { return f.record("cancel " + id) }
func (f *fakeExec) Status(ctx context.Context) error            { return f.record("status") }
func (f *fakeExec) Attachments(ctx context.Context, parentID string) error {
	return f.record("attachments " + parentID)
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = strings.TrimSpace(strings.ReplaceAll(toString(v), "\n", " "))
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	default:
		return ""
	}
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"add a.pdf b.png",
		"l",
		"upload 42 title=Plan",
		"status",
		"cancel id-2",
		"retry id-2",
		"rm id-1",
		"attachments 42",
		"",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	assert.Equal(t, []string{
		"add a.pdf,b.png",
		"list",
		"upload 42 title=Plan",
		"status",
		"cancel id-2",
		"retry id-2",
		"remove id-1",
		"attachments 42",
	}, exec.calls)
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader("add\nupload\nretry\nfoobar\nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Usage: add <path...>")
	assert.Contains(t, *out, "Usage: upload <parent-id> [name=value...]")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_PrintsHandlerErrors(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{fail: errors.New("upload in progress")}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("list\n")))

	assert.Contains(t, *out, "Error: upload in progress")
}
