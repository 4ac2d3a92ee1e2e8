package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL needs. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Onboard(ctx context.Context) error
	Create(ctx context.Context) error
	Vault(ctx context.Context) error
	Show(ctx context.Context, ref string) error
	Charge(ctx context.Context, ref, mode string) error
	Activate(ctx context.Context, ref string) error
	Burn(ctx context.Context, ref string) error
	Enhance(ctx context.Context, ref string) error
	Export(ctx context.Context, ref string) error
	Order(ctx context.Context, ref string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Continue(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, status, exit"
	helpLoggedIn  = "Available commands: create, vault, show <id>, charge <id> [quick|deep], activate <id>, continue, enhance <id>, burn <id>, export <id>, order <id>, sync, status, onboard, logout, exit"
)

// needsID lists the commands taking an anchor id or prefix.
var needsID = map[string]bool{
	"show": true, "charge": true, "activate": true, "burn": true,
	"enhance": true, "export": true, "order": true,
}

// runREPL reads commands from scanner until EOF, "exit" or "quit". Command
// errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, w io.Writer) {
	for {
		fmt.Fprintf(w, "anchor %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(w, "Bye!")
			return
		}

		if needsID[cmd] && len(args) == 0 {
			fmt.Fprintf(w, "Usage: %s <id>\n", cmd)
			continue
		}

		loggedOutOK := cmd == "help" || cmd == "register" || cmd == "login" || cmd == "status"
		if !loggedOutOK && !a.isLoggedIn() {
			fmt.Fprintln(w, "Please log in first.")
			continue
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "onboard":
			err = a.Onboard(ctx)
		case "create":
			err = a.Create(ctx)
		case "vault", "l", "list":
			err = a.Vault(ctx)
		case "show":
			err = a.Show(ctx, args[0])
		case "charge":
			mode := ""
			if len(args) > 1 {
				mode = args[1]
			}
			err = a.Charge(ctx, args[0], mode)
		case "activate":
			err = a.Activate(ctx, args[0])
		case "burn":
			err = a.Burn(ctx, args[0])
		case "enhance":
			err = a.Enhance(ctx, args[0])
		case "export":
			err = a.Export(ctx, args[0])
		case "order":
			err = a.Order(ctx, args[0])
		case "sync":
			err = a.Sync(ctx)
		case "status":
			err = a.Status(ctx)
		case "continue":
			err = a.Continue(ctx)
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
		if err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}
