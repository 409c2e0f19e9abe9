package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Categories(ctx context.Context, args []string) error
	Products(ctx context.Context, args []string) error
	Dashboard(ctx context.Context) error
	Orders(ctx context.Context, args []string) error
	Sales(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: whoami, categories, products, dashboard, orders, sales, logout, exit\n" +
		"  categories|products [list | search <term> | page <n> | next | prev | size <n> | add [k=v ...] | edit <id> [k=v ...] | delete <id> | reload]\n" +
		"  orders|sales [week | month | year]"
)

var errNotLoggedIn = errors.New("not logged in")

// runREPL reads commands line by line from reader and dispatches them to
// a. The loop ends on EOF, on "exit"/"quit", or when ctx is done.
//
// Catalog and analytics commands need a session; without one the user is
// told to log in. Errors returned by handlers are printed as a short
// message and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("shop %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "categories", "cat":
			cmdErr = requireLogin(a, func() error { return a.Categories(ctx, args) })

		case "products", "prod":
			cmdErr = requireLogin(a, func() error { return a.Products(ctx, args) })

		case "dashboard":
			cmdErr = requireLogin(a, func() error { return a.Dashboard(ctx) })

		case "orders":
			cmdErr = requireLogin(a, func() error { return a.Orders(ctx, args) })

		case "sales":
			cmdErr = requireLogin(a, func() error { return a.Sales(ctx, args) })

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", errorMessage(cmdErr))
		}
		if err != nil {
			return
		}
	}
}

func requireLogin(a execIface, fn func() error) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	return fn()
}

func errorMessage(err error) string {
	if errors.Is(err, errNotLoggedIn) {
		return "Please log in first."
	}
	var ue usageError
	if errors.As(err, &ue) {
		return "usage: " + string(ue)
	}
	return services.Message(err)
}

// usageError reports a malformed command line.
type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }
