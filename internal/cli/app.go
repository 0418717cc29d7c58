// Package cli runs the monitoring pages from a terminal.
//
// Every command builds a fresh page, loads it and renders the result. No
// state is carried between commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/monitor"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("invalid usage")

// LoginFunc exchanges credentials for a bearer token.
type LoginFunc func(ctx context.Context, email, password string) (token string, err error)

// App wires a backend to the terminal.
type App struct {
	Backend monitor.Backend
	Login   LoginFunc
	Out     io.Writer
	Err     io.Writer
	Logger  *zap.Logger
}

const usage = `Usage: monitor [global flags] <command> [args]

Commands:
  login --email <email> --password <password>
  list [--query <text>]
  show <assignmentId>
  comment <assignmentId> <files|videos> <itemId> <body...>
  reply <assignmentId> <files|videos> <itemId> <commentId> <body...>
  open <assignmentId> <files|videos> <itemId>
`

// Usage prints the command summary.
func (a *App) Usage() {
	fmt.Fprint(a.Err, usage)
}

// Run dispatches a single command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.Usage()
		return ErrUsage
	}
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.runLogin(ctx, rest)
	case "list":
		return a.runList(ctx, rest)
	case "show":
		return a.runShow(ctx, rest)
	case "comment":
		return a.runComment(ctx, rest)
	case "reply":
		return a.runReply(ctx, rest)
	case "open":
		return a.runOpen(ctx, rest)
	case "help", "-h", "--help":
		a.Usage()
		return nil
	}
	fmt.Fprintf(a.Err, "unknown command %q\n", cmd)
	a.Usage()
	return ErrUsage
}

func (a *App) runLogin(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if *email == "" || *password == "" || a.Login == nil {
		a.Usage()
		return ErrUsage
	}

	token, err := a.Login(ctx, *email, *password)
	if err != nil {
		fmt.Fprintf(a.Err, "[error] Login failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.Out, "export MONITOR_TOKEN=%s\n", token)
	return nil
}

func (a *App) runList(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	query := fs.StringP("query", "q", "", "filter by name or description")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	return a.showList(ctx, *query)
}

func (a *App) showList(ctx context.Context, query string) error {
	page := monitor.NewListPage(a.Backend, a.notifier(), a.Logger)
	page.SetQuery(query)
	err := page.Load(ctx)
	if errors.Is(err, monitor.ErrStaleResponse) {
		return err
	}
	// A failed load still renders, as the empty list.
	RenderList(a.Out, page.Visible(), page.ShowEmpty())
	return err
}

func (a *App) runShow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.Usage()
		return ErrUsage
	}
	page, err := a.loadDetail(ctx, args[0])
	if err != nil {
		return err
	}
	defer page.Close()
	a.renderDetail(page)
	return nil
}

func (a *App) runComment(ctx context.Context, args []string) error {
	if len(args) < 4 {
		a.Usage()
		return ErrUsage
	}
	kind, err := parseKind(args[1])
	if err != nil {
		return err
	}
	page, err := a.loadDetail(ctx, args[0])
	if err != nil {
		return err
	}
	defer page.Close()

	if err := page.AddComment(ctx, args[2], kind, strings.Join(args[3:], " ")); err != nil {
		return err
	}
	a.renderDetail(page)
	return nil
}

func (a *App) runReply(ctx context.Context, args []string) error {
	if len(args) < 5 {
		a.Usage()
		return ErrUsage
	}
	kind, err := parseKind(args[1])
	if err != nil {
		return err
	}
	page, err := a.loadDetail(ctx, args[0])
	if err != nil {
		return err
	}
	defer page.Close()

	if err := page.AddReply(ctx, args[2], kind, args[3], strings.Join(args[4:], " ")); err != nil {
		return err
	}
	a.renderDetail(page)
	return nil
}

func (a *App) runOpen(ctx context.Context, args []string) error {
	if len(args) != 3 {
		a.Usage()
		return ErrUsage
	}
	kind, err := parseKind(args[1])
	if err != nil {
		return err
	}
	page, err := a.loadDetail(ctx, args[0])
	if err != nil {
		return err
	}
	defer page.Close()

	return page.OpenItem(ctx, kind, args[2])
}

// loadDetail loads a detail page. A missing assignment sends the user back
// to the list, which is rendered in place.
func (a *App) loadDetail(ctx context.Context, assignmentID string) (*monitor.DetailPage, error) {
	backToList := false
	nav := monitor.NavigatorFunc(func() { backToList = true })
	page := monitor.NewDetailPage(assignmentID, a.Backend, a.notifier(), nav, a.opener(), a.Logger)

	err := page.Load(ctx)
	if backToList {
		fmt.Fprintln(a.Out)
		if listErr := a.showList(ctx, ""); listErr != nil {
			a.Logger.Debug("list after redirect failed", zap.Error(listErr))
		}
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (a *App) renderDetail(page *monitor.DetailPage) {
	if assignment, ok := page.Assignment(); ok {
		RenderDetail(a.Out, assignment)
	}
}

func (a *App) notifier() monitor.Notifier {
	return monitor.NotifierFunc(func(n monitor.Notification) {
		fmt.Fprintf(a.Err, "[%s] %s\n", n.Level, n.Message)
	})
}

func (a *App) opener() monitor.Opener {
	return monitor.OpenerFunc(func(_ context.Context, url string) error {
		_, err := fmt.Fprintf(a.Out, "Open: %s\n", url)
		return err
	})
}

func (a *App) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.Err)
	return fs
}

func parseKind(s string) (domain.ItemKind, error) {
	kind, ok := domain.ParseItemKind(s)
	if !ok {
		return "", fmt.Errorf("%w: item kind must be files or videos, got %q", ErrUsage, s)
	}
	return kind, nil
}
