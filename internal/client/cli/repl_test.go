package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register", nil)
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) WhoAmI(ctx context.Context) error { return f.record("whoami", nil) }
func (f *fakeExec) Categories(ctx context.Context, args []string) error {
	return f.record("categories", args)
}
func (f *fakeExec) Products(ctx context.Context, args []string) error {
	return f.record("products", args)
}
func (f *fakeExec) Dashboard(ctx context.Context) error { return f.record("dashboard", nil) }
func (f *fakeExec) Orders(ctx context.Context, args []string) error {
	return f.record("orders", args)
}
func (f *fakeExec) Sales(ctx context.Context, args []string) error {
	return f.record("sales", args)
}

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	capturePrints(t)

	input := strings.Join([]string{
		"help",
		"categories",
		"login",
		"help",
		"categories search tea",
		"prod page 2",
		"dashboard",
		"orders month",
		"sales",
		"whoami",
		"foobar",
		"logout",
		"exit",
		"whoami",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"login", "categories", "products", "dashboard", "orders", "sales", "whoami", "logout"}, exec.calls)
	assert.Equal(t, []string{"search", "tea"}, exec.args[1])
	assert.Equal(t, []string{"page", "2"}, exec.args[2])
	assert.Equal(t, []string{"month"}, exec.args[4])
	assert.Empty(t, exec.args[5])
}

func TestRunREPL_RequiresLogin(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("products\nquit\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Error: Please log in first.")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := capturePrints(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "" }, bufio.NewReader(strings.NewReader("help\n")))
	assert.Contains(t, *lines, helpLoggedOut)

	*lines = nil
	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" }, bufio.NewReader(strings.NewReader("help\n")))
	assert.Contains(t, *lines, helpLoggedIn)
}

func TestRunREPL_PrintsHandlerErrorsAndContinues(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{loggedIn: true, err: client.ErrNotFound}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("categories\nproducts\n")))

	assert.Equal(t, []string{"categories", "products"}, exec.calls)
	assert.Contains(t, *lines, "Error: The item no longer exists. Reload the list and try again.")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("whoami")))

	assert.Equal(t, []string{"whoami"}, exec.calls)
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	capturePrints(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{loggedIn: true}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("whoami\n")))

	assert.Empty(t, exec.calls)
}

func TestRunREPL_PromptShowsStatus(t *testing.T) {
	lines := capturePrints(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "(ann online)" }, bufio.NewReader(strings.NewReader("\n")))

	require.NotEmpty(t, *lines)
	assert.Equal(t, "shop (ann online)> ", (*lines)[0])
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Please log in first.", errorMessage(errNotLoggedIn))
	assert.Equal(t, "usage: orders [week | month | year]", errorMessage(usageError("orders [week | month | year]")))
	assert.Equal(t, "Something went wrong: boom", errorMessage(errors.New("boom")))
}
