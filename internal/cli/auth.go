package cli

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/base"
	"github.com/Makepad-fr/tada/internal/ui"
)

const authUsage = "usage: tada auth <login|logout|status|whoami>"

func runAuth(args []string, opt Options) int {
	if len(args) == 0 {
		ui.Fail(opt.Stderr, authUsage)
		return 2
	}
	switch args[0] {
	case "login":
		return doAuthLogin(args[1:], opt)
	case "logout":
		return doAuthLogout(opt)
	case "status":
		return doAuthStatus(opt)
	case "whoami":
		return doAuthWhoAmI(opt)
	}
	ui.Fail(opt.Stderr, authUsage)
	return 2
}

func doAuthLogin(args []string, opt Options) int {
	fs := flag.NewFlagSet("tada auth login", flag.ContinueOnError)
	fs.SetOutput(opt.Stderr)
	role := fs.String("role", "", "role to use instead of the token's role claim")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *role != "" {
		if _, err := base.ParseRole(*role); err != nil {
			ui.Fail(opt.Stderr, err.Error())
			return 2
		}
	}

	fmt.Fprint(opt.Stdout, "Paste your token: ")
	sc := bufio.NewScanner(opt.Stdin)
	if !sc.Scan() {
		msg := "no input"
		if err := sc.Err(); err != nil {
			msg = err.Error()
		}
		fmt.Fprintln(opt.Stdout)
		ui.Fail(opt.Stderr, "read token: "+msg)
		return 1
	}
	if err := auth.SetToken(sc.Text(), *role, nil); err != nil {
		ui.Fail(opt.Stderr, "save token: "+err.Error())
		return 1
	}
	ui.OK(opt.Stdout, "logged in")
	return 0
}

func doAuthLogout(opt Options) int {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK(opt.Stdout, "token is provided by "+auth.EnvToken+" env var (nothing to delete)")
		return 0
	}
	if err := auth.DeleteToken(); err != nil {
		ui.Fail(opt.Stderr, "logout: "+err.Error())
		return 1
	}
	ui.OK(opt.Stdout, "logged out")
	return 0
}

func doAuthStatus(opt Options) int {
	t := ui.Current()
	ti, err := auth.GetToken()
	if err != nil {
		ui.Fail(opt.Stderr, err.Error())
		return 1
	}
	if ti == nil {
		fmt.Fprintln(opt.Stdout, t.Muted.Render("not logged in"))
		fmt.Fprintln(opt.Stdout, "Run: tada auth login")
		return 0
	}
	fmt.Fprintf(opt.Stdout, "source: %s\n", ti.Source)
	role := ti.EffectiveRole()
	if role == "" {
		role = "(from config)"
	}
	fmt.Fprintf(opt.Stdout, "role: %s\n", role)
	switch {
	case ti.ExpiresAt == nil:
		fmt.Fprintln(opt.Stdout, "expires: (unknown)")
	case ti.Expired(time.Now()):
		fmt.Fprintf(opt.Stdout, "expires: %s %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339), t.Error.Render("(expired)"))
	default:
		fmt.Fprintf(opt.Stdout, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(opt.Stdout, "env override: "+auth.EnvToken)
	return 0
}

// whoami decodes a JWT locally (unsigned); opaque tokens print basic info.
func doAuthWhoAmI(opt Options) int {
	ti, _ := auth.GetToken()
	if ti == nil || strings.TrimSpace(ti.Token) == "" {
		ui.Fail(opt.Stderr, "not logged in. Run: tada auth login")
		return 2
	}
	if claims, err := auth.Claims(ti.Token); err == nil {
		b, err := json.MarshalIndent(claims, "", "  ")
		if err == nil {
			fmt.Fprintln(opt.Stdout, "JWT payload:")
			fmt.Fprintln(opt.Stdout, string(b))
			return 0
		}
	}
	fmt.Fprintln(opt.Stdout, "Opaque token (cannot introspect locally).")
	fmt.Fprintln(opt.Stdout, "source:", ti.Source)
	return 0
}
