package cli

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/idilsaglam/qna/internal/api"
	"github.com/idilsaglam/qna/internal/board"
	"github.com/idilsaglam/qna/internal/config"
	"github.com/idilsaglam/qna/internal/model"
	"github.com/idilsaglam/qna/internal/session"
	"github.com/idilsaglam/qna/internal/tui"
	"github.com/idilsaglam/qna/internal/ui"
)

// Options tune behavior from root flags.
type Options struct {
	Server string // override the configured server base URL
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "login":
		username := ""
		if len(a) > 0 {
			username = a[0]
		}
		return doLogin(opt, username)

	case "logout":
		return doLogout(opt)

	case "register":
		email := ""
		if len(a) > 0 {
			email = a[0]
		}
		return doRegister(opt, email)

	case "status":
		return doStatus(opt)

	case "whoami":
		return doWhoAmI(opt)

	case "ls":
		return doList(opt)

	case "items":
		return doItems(opt)

	case "answer":
		if len(a) < 2 {
			ui.Fail("usage: qna answer <item-id> <text...>")
			return 2
		}
		return doAnswer(opt, model.ID(a[0]), strings.Join(a[1:], " "))

	case "edit":
		if len(a) < 3 {
			ui.Fail("usage: qna edit <item-id> <answer-id> <text...>")
			return 2
		}
		return doEdit(opt, model.ID(a[0]), model.ID(a[1]), strings.Join(a[2:], " "))

	case "rm":
		if len(a) != 2 {
			ui.Fail("usage: qna rm <item-id> <answer-id>")
			return 2
		}
		return doRemove(opt, model.ID(a[0]), model.ID(a[1]))
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`qna - terminal client for the question/answer service

Usage:
  qna <subcommand> [args]

Subcommands:
  login [username]                Log in and store the bearer token
  logout                          Delete the stored token
  register [email]                Create an account
  status                          Show token status
  whoami                          Introspect the stored token
  ls                              Browse questions interactively (TUI)
  items                           Print questions and answers
  answer <item> <text...>         Submit an answer to a question
  edit <item> <answer> <text...>  Replace one of your answers
  rm <item> <answer>              Delete one of your answers

Examples:
  qna login ada@example.com
  qna ls
  qna answer 1 "forty two"
`)
}

// setup wires config, session store, API client and board together.
func setup(opt Options) (*config.Config, *session.Store, *board.Board, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, nil, nil, err
	}
	if opt.Server != "" {
		cfg.ServerURL = strings.TrimRight(opt.Server, "/")
	}
	store := session.NewStore(cfg.DataDir)
	client := api.New(cfg.ServerURL, store)
	return cfg, store, board.New(client, cfg.UserID), nil
}

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func doLogin(opt Options, username string) int {
	cfg, store, _, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	cl := api.New(cfg.ServerURL, store)
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			ui.Fail("read username: " + err.Error())
			return 1
		}
	}
	password, code := promptPassword("Password: ")
	if code != 0 {
		return code
	}

	token, err := cl.Login(context.Background(), model.Credentials{Username: username, Password: password})
	if err != nil {
		ui.Fail("login: " + err.Error())
		return 1
	}
	if err := store.Save(token, nil); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doLogout(opt Options) int {
	_, store, _, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	ti, _ := store.Info()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + session.EnvToken + " env var (nothing to delete)")
		return 0
	}
	if err := store.Clear(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doRegister(opt Options, email string) int {
	cfg, store, _, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	cl := api.New(cfg.ServerURL, store)
	if email == "" {
		email, err = promptLine("Email: ")
		if err != nil {
			ui.Fail("read email: " + err.Error())
			return 1
		}
	}
	password, code := promptPassword("Password: ")
	if code != 0 {
		return code
	}
	confirm, code := promptPassword("Confirm password: ")
	if code != 0 {
		return code
	}
	// local check, nothing is sent when it fails
	if password != confirm {
		ui.Fail("register: passwords do not match")
		return 2
	}

	if err := cl.Register(context.Background(), email, password); err != nil {
		ui.Fail("register: " + err.Error())
		return 1
	}
	ui.OK("registered, now run: qna login " + email)
	return 0
}

func doStatus(opt Options) int {
	_, store, _, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	ti, _ := store.Info()
	if ti == nil {
		fmt.Println(ui.MutedStyle.Render("not logged in"))
		fmt.Println("Run: qna login")
		return 0
	}
	fmt.Printf("source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		fmt.Printf("expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Println("expires: (unknown)")
	}
	fmt.Println("env override: " + session.EnvToken)
	return 0
}

// whoami tries to decode JWT locally (unsigned); opaque tokens print basic info.
func doWhoAmI(opt Options) int {
	_, store, _, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	ti, _ := store.Info()
	if ti == nil {
		ui.Fail("not logged in. Run: qna login")
		return 2
	}
	parts := strings.Split(ti.Token, ".")
	if len(parts) == 3 {
		payloadB64 := parts[1]
		// add padding if needed
		switch len(payloadB64) % 4 {
		case 2:
			payloadB64 += "=="
		case 3:
			payloadB64 += "="
		}
		if p, err := decodeB64URL(payloadB64); err == nil {
			fmt.Println("JWT payload:")
			fmt.Println(p)
			return 0
		}
	}
	fmt.Println("Opaque token (cannot introspect locally).")
	fmt.Println("source:", ti.Source)
	return 0
}

func decodeB64URL(s string) (string, error) {
	dec, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		dec2, err2 := base64.URLEncoding.DecodeString(s)
		if err2 != nil {
			return "", err
		}
		return string(dec2), nil
	}
	return string(dec), nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, int) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		ui.Fail("read password: " + err.Error())
		return "", 1
	}
	return string(b), 0
}

// ---------------------------------------------------
// Item / answer subcommands
// ---------------------------------------------------

func doList(opt Options) int {
	_, _, b, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	if err := tui.Run(b); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func doItems(opt Options) int {
	_, _, b, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	if err := b.Refresh(context.Background()); err != nil {
		ui.Fail("items: " + b.Err())
		return 1
	}
	items := b.Items()
	if len(items) == 0 {
		fmt.Println(ui.MutedStyle.Render("no questions"))
		return 0
	}
	var lines []string
	for i, it := range items {
		lines = append(lines, ui.TitleStyle.Render(it.Description)+
			ui.MutedStyle.Render("  #"+it.ID.String()))
		if len(it.Answers) == 0 {
			lines = append(lines, ui.MutedStyle.Render("  (no answers)"))
		}
		for _, a := range it.Answers {
			lines = append(lines, "  "+ui.AccentStyle.Render("·")+" "+a.Text+
				ui.MutedStyle.Render("  #"+a.ID.String()))
		}
		if i < len(items)-1 {
			lines = append(lines, "")
		}
	}
	ui.Panel(lines)
	return 0
}

func doAnswer(opt Options, itemID model.ID, text string) int {
	_, _, b, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	ctx := context.Background()
	if err := b.Refresh(ctx); err != nil {
		ui.Fail("answer: " + b.Err())
		return 1
	}
	if err := b.SubmitAnswer(ctx, itemID, text); err != nil {
		ui.Fail("answer: " + b.Err())
		return 1
	}
	ui.OK("answer submitted")
	return 0
}

func doEdit(opt Options, itemID, answerID model.ID, text string) int {
	_, _, b, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	if err := b.EditAnswer(context.Background(), itemID, answerID, text); err != nil {
		ui.Fail("edit: " + b.Err())
		return 1
	}
	ui.OK("answer updated")
	return 0
}

func doRemove(opt Options, itemID, answerID model.ID) int {
	_, _, b, err := setup(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	if err := b.RemoveAnswer(context.Background(), itemID, answerID); err != nil {
		ui.Fail("rm: " + b.Err())
		return 1
	}
	ui.OK("answer deleted")
	return 0
}
