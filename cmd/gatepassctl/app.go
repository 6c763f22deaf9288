package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"gatepass/pkg/client"
	"gatepass/pkg/model"
	"gatepass/pkg/session"
	"gatepass/pkg/viewmodel"
)

const (
	envServer     = "GATEPASS_URL"
	defaultServer = "http://localhost:8080"
)

var errNotLoggedIn = errors.New("not logged in, run `gatepassctl login` first")

// env is built once per invocation in Before and shared by every command.
type env struct {
	api     *client.GatepassClient
	session session.Store
	out     io.Writer
}

func newApp(out io.Writer) *cli.App {
	e := &env{out: out}

	return &cli.App{
		Name:   "gatepassctl",
		Usage:  "front desk console for gatepass",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: defaultServer, EnvVars: []string{envServer}, Usage: "gatepass API base URL"},
			&cli.StringFlag{Name: "session-file", EnvVars: []string{session.EnvSessionFile}, Usage: "where the login is kept"},
		},
		Before: func(c *cli.Context) error {
			path := c.String("session-file")
			if path == "" {
				var err error
				if path, err = session.DefaultPath(); err != nil {
					return err
				}
			}
			state := session.New(path)
			if err := state.Hydrate(); err != nil {
				return err
			}
			e.session = state
			e.api = client.NewGatepassClient(c.String("server"))
			if token := state.Token(); token != "" {
				e.api.SetToken(token)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in as a front desk user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: e.login,
			},
			{
				Name:   "logout",
				Usage:  "forget the stored login",
				Action: e.logout,
			},
			{
				Name:   "list",
				Usage:  "list every visitor group, newest first",
				Action: e.list,
			},
			{
				Name:  "dashboard",
				Usage: "show totals and a filtered listing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "match name, reason or group id"},
					&cli.StringFlag{Name: "status", Value: string(viewmodel.FilterAll), Usage: "all, checked-in or checked-out"},
				},
				Action: e.dashboard,
			},
			{
				Name:      "checkout",
				Usage:     "mark a group as exited",
				ArgsUsage: "<groupId>",
				Action:    e.checkout,
			},
			{
				Name:  "register",
				Usage: "check in a visitor group",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "phone", Required: true},
					&cli.StringFlag{Name: "address", Required: true},
					&cli.StringFlag{Name: "reason", Required: true},
					&cli.StringFlag{Name: "photo-url", Required: true},
					&cli.StringSliceFlag{Name: "companion", Usage: "name[:phone], repeatable"},
					&cli.StringFlag{Name: "otp", Usage: "code sent to --phone, when verification is enabled"},
				},
				Action: e.register,
			},
			{
				Name:  "send-otp",
				Usage: "text a verification code to a visitor's phone",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "phone", Required: true},
				},
				Action: e.sendOTP,
			},
			{
				Name:      "theme",
				Usage:     "switch the console theme",
				ArgsUsage: "light|dark",
				Action:    e.theme,
			},
		},
	}
}

func (e *env) ctx(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, 15*time.Second)
}

func (e *env) login(c *cli.Context) error {
	ctx, cancel := e.ctx(c)
	defer cancel()

	auth, err := e.api.Login(ctx, c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	if err := e.session.Login(auth.Token, session.User{Name: auth.Name, Email: auth.Email}); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Logged in as %s <%s>\n", auth.Name, auth.Email)
	return nil
}

func (e *env) logout(*cli.Context) error {
	if err := e.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Logged out")
	return nil
}

func (e *env) list(c *cli.Context) error {
	if !e.session.Authenticated() {
		return errNotLoggedIn
	}
	ctx, cancel := e.ctx(c)
	defer cancel()

	groups, err := e.api.ListVisitors(ctx)
	if err != nil {
		return err
	}
	if err := e.session.SetVisitors(groups); err != nil {
		return err
	}
	return e.printGroups(groups)
}

// dashboard refreshes the listing and filters it locally, so repeated
// searches work from the same snapshot the stats were computed on.
func (e *env) dashboard(c *cli.Context) error {
	if !e.session.Authenticated() {
		return errNotLoggedIn
	}
	status, ok := viewmodel.ParseStatusFilter(c.String("status"))
	if !ok {
		return fmt.Errorf("unknown status %q", c.String("status"))
	}

	ctx, cancel := e.ctx(c)
	defer cancel()
	groups, err := e.api.ListVisitors(ctx)
	if err != nil {
		return err
	}
	if err := e.session.SetVisitors(groups); err != nil {
		return err
	}

	d := viewmodel.Derive(e.session.Visitors(), c.String("search"), status)
	fmt.Fprintf(e.out, "Total: %d  Checked in: %d  Checked out: %d\n\n",
		d.Stats.TotalVisitors, d.Stats.CheckedIn, d.Stats.CheckedOut)
	return e.printGroups(d.FilteredVisitors)
}

func (e *env) checkout(c *cli.Context) error {
	if !e.session.Authenticated() {
		return errNotLoggedIn
	}
	groupID := strings.TrimSpace(c.Args().First())
	if groupID == "" {
		return errors.New("groupId is required")
	}

	ctx, cancel := e.ctx(c)
	defer cancel()
	resp, err := e.api.Checkout(ctx, groupID)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s: %s at %s\n", resp.Message, resp.Updated.GroupID, formatTime(resp.Updated.OutTime))
	return nil
}

func (e *env) register(c *cli.Context) error {
	companions, err := parseCompanions(c.StringSlice("companion"))
	if err != nil {
		return err
	}
	reg := model.VisitorRegistration{
		PrimaryVisitor: model.PrimaryVisitor{
			VisitorName: c.String("name"),
			PhoneNumber: c.String("phone"),
			Address:     c.String("address"),
			Reason:      c.String("reason"),
			PhotoURL:    c.String("photo-url"),
		},
		Companions: companions,
	}

	ctx, cancel := e.ctx(c)
	defer cancel()

	if code := c.String("otp"); code != "" {
		verified, err := e.api.VerifyOTP(ctx, reg.PhoneNumber, code)
		if err != nil {
			return err
		}
		reg.VerificationToken = verified.VerificationToken
	}

	resp, err := e.api.RegisterVisitors(ctx, reg, uuid.NewString())
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s. Group ID: %s (%d companions)\n", resp.Message, resp.GroupID, len(resp.Group.Companions))
	return nil
}

func (e *env) sendOTP(c *cli.Context) error {
	ctx, cancel := e.ctx(c)
	defer cancel()

	resp, err := e.api.SendOTP(ctx, c.String("phone"))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s, valid until %s\n", resp.Message, formatTime(&resp.ExpiresAt))
	return nil
}

func (e *env) theme(c *cli.Context) error {
	theme := session.Theme(strings.ToLower(c.Args().First()))
	if err := e.session.SetTheme(theme); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Theme set to %s\n", theme)
	return nil
}

func (e *env) printGroups(groups []model.VisitorGroup) error {
	if len(groups) == 0 {
		fmt.Fprintln(e.out, "No visitors")
		return nil
	}
	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tNAME\tPHONE\tREASON\tPARTY\tIN\tOUT\tSTATUS")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			g.GroupID,
			g.PrimaryVisitor.VisitorName,
			g.PrimaryVisitor.PhoneNumber,
			g.PrimaryVisitor.Reason,
			len(g.Companions)+1,
			formatTime(&g.InTime),
			formatTime(g.OutTime),
			g.Status(),
		)
	}
	return tw.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// parseCompanions reads "name" or "name:phone" values.
func parseCompanions(raw []string) ([]model.Companion, error) {
	companions := make([]model.Companion, 0, len(raw))
	for _, v := range raw {
		name, phone, _ := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("companion %q has no name", v)
		}
		companions = append(companions, model.Companion{Name: name, PhoneNumber: strings.TrimSpace(phone)})
	}
	return companions, nil
}
