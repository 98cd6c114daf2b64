package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errUsage = errors.New("usage: admin create -email E -name N | admin role -email E -role R")

var adminFlags = []string{"-email", "-name", "-role"}

type accountAdmin interface {
	CreateUser(ctx context.Context, email, name, password string, role models.Role) (*models.User, error)
	ChangeRoleByEmail(ctx context.Context, email string, role models.Role) (*models.User, error)
}

type adminArgs struct {
	email string
	name  string
	role  string
}

// parseAdminArgs reads the subcommand flags. Server flags sharing the same
// command line are filtered out first.
func parseAdminArgs(args []string) (adminArgs, error) {
	var a adminArgs

	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&a.email, "email", "", "account email")
	fs.StringVar(&a.name, "name", "", "account name")
	fs.StringVar(&a.role, "role", "", "role name")

	if err := fs.Parse(flagx.FilterArgs(args, adminFlags)); err != nil {
		return a, err
	}
	return a, nil
}

func run(ctx context.Context, args []string, accounts accountAdmin, w io.Writer) error {
	cmd, rest := flagx.Subcommand(args, append(config.FlagNames(), adminFlags...))
	if cmd == "" {
		return errUsage
	}

	a, err := parseAdminArgs(rest)
	if err != nil {
		return err
	}
	if a.email == "" {
		return errUsage
	}

	switch cmd {
	case "create":
		if a.name == "" {
			return errUsage
		}
		pw, err := promptPassword(w)
		if err != nil {
			return err
		}
		u, err := accounts.CreateUser(ctx, a.email, a.name, pw, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Fprintf(w, "created %s (%s) as %s\n", u.Email, u.ID, u.Role)
	case "role":
		role, err := models.ParseRole(a.role)
		if err != nil {
			return err
		}
		u, err := accounts.ChangeRoleByEmail(ctx, a.email, role)
		if err != nil {
			return fmt.Errorf("change role: %w", err)
		}
		fmt.Fprintf(w, "%s is now %s\n", u.Email, u.Role)
	default:
		return errUsage
	}
	return nil
}

// promptPassword asks twice without echo and wipes the raw buffers.
func promptPassword(w io.Writer) (string, error) {
	first, err := readOnce(w, "Enter password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	second, err := readOnce(w, "Repeat password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		return "", common.ErrPasswordMismatch
	}
	return string(first), nil
}

func readOnce(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
