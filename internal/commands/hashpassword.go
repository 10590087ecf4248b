package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/i474232898/activity-heatmap/internal/auth"
)

// stdin is shared so buffered piped input is not lost between prompts.
var stdin = bufio.NewReader(os.Stdin)

// HashPassword handles the hash-password subcommand and returns the process exit code.
func HashPassword(args []string) int {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	file := fs.String("file", os.Getenv("AUTH_FILE"), "Path to auth file (default: $AUTH_FILE or ./auth.secret)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: activity-heatmap hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates an auth file with an Argon2id hashed password.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	path := *file
	if path == "" {
		path = "auth.secret"
	}

	fmt.Print("Enter username: ")
	var username string
	if _, err := fmt.Fscanln(stdin, &username); err != nil || username == "" {
		fmt.Fprintf(os.Stderr, "Username cannot be empty\n")
		return 1
	}

	password, err := readPassword("Enter password:   ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return 1
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password confirmation: %v\n", err)
		return 1
	}

	if password == "" {
		fmt.Fprintf(os.Stderr, "Password cannot be empty\n")
		return 1
	}
	if password != confirm {
		fmt.Fprintf(os.Stderr, "Passwords do not match\n")
		return 1
	}

	if err := auth.CreateFile(path, username, password, *overwrite, stdin, os.Stdout); err != nil {
		if errors.Is(err, auth.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Aborted")
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// readPassword reads a line without echo when stdin is a terminal.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Piped input, e.g. from a provisioning script.
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(password), nil
}
