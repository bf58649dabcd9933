package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("BACKEND", "local")
	t.Setenv("BADGER_FILEPATH", filepath.Join(dir, "badger"))
	t.Setenv("TOKEN_FILEPATH", filepath.Join(dir, "token"))
	t.Setenv("AUTH_SECRET", "a-long-enough-test-secret")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("COLOURS", "false")
}

func runCommand(t *testing.T, args ...string) (int, string, error) {
	t.Helper()
	var out bytes.Buffer
	code, err := run(args, strings.NewReader(""), &out)
	return code, out.String(), err
}

func TestRun_Purchase_Flow(t *testing.T) {
	req := require.New(t)
	setupEnv(t)

	code, out, err := runCommand(t, "register", "amara", "Str0ng!Passw0rd")
	req.NoError(err)
	req.Equal(exitOK, code)
	req.Contains(out, "Welcome amara")

	// When buying the single cover plan
	code, out, err = runCommand(t, "purchase", "artwork", "single", "title=Harmattan")
	req.NoError(err)
	req.Equal(exitOK, code)
	req.Contains(out, "190 credits left")

	// Then the pending project is listed and the balance is kept between runs
	_, out, err = runCommand(t, "projects")
	req.NoError(err)
	req.Contains(out, "artwork - Single Cover")
	req.Contains(out, "pending")

	_, out, err = runCommand(t, "credits")
	req.NoError(err)
	req.Contains(out, "Balance: 190 credits")
}

func TestRun_Messages_Between_Users(t *testing.T) {
	req := require.New(t)
	setupEnv(t)

	_, _, err := runCommand(t, "register", "kofi", "Str0ng!Passw0rd")
	req.NoError(err)
	_, _, err = runCommand(t, "register", "amara", "Str0ng!Passw0rd")
	req.NoError(err)

	_, out, err := runCommand(t, "send", "kofi", "the", "mix", "is", "ready")
	req.NoError(err)
	req.Contains(out, "Sent to kofi")

	_, out, err = runCommand(t, "thread", "kofi")
	req.NoError(err)
	req.Contains(out, "amara: the mix is ready")

	// kofi sees the same conversation from the other side
	_, _, err = runCommand(t, "login", "kofi", "Str0ng!Passw0rd")
	req.NoError(err)
	_, out, err = runCommand(t, "chats")
	req.NoError(err)
	req.Contains(out, "amara")
	req.Contains(out, "the mix is ready")
}

func TestRun_Requires_Login(t *testing.T) {
	req := require.New(t)
	setupEnv(t)

	code, _, err := runCommand(t, "projects")

	req.Equal(exitError, code)
	req.ErrorContains(err, "not signed in")
}

func TestRun_Usage(t *testing.T) {
	req := require.New(t)
	setupEnv(t)

	// Given a missing argument, the usage line of that command is printed
	code, out, err := runCommand(t, "status", "p1")
	req.NoError(err)
	req.Equal(exitUsage, code)
	req.Contains(out, "usage: artist-hub status <project-id> <status>")

	// And arguments of the wrong shape are usage errors too
	code, out, err = runCommand(t, "buy-credits", "lots")
	req.NoError(err)
	req.Equal(exitUsage, code)
	req.Contains(out, "usage: artist-hub buy-credits <amount>")

	code, _, err = runCommand(t, "purchase", "artwork", "single", "Harmattan")
	req.NoError(err)
	req.Equal(exitUsage, code)

	code, _, err = runCommand(t, "projects", "--bogus")
	req.NoError(err)
	req.Equal(exitUsage, code)

	// When the command is unknown, every command is listed
	code, out, err = runCommand(t, "dance")
	req.ErrorIs(err, errUnknownCommand)
	req.Equal(exitUsage, code)
	req.Contains(out, "buy-credits")
	req.Contains(out, "new-project")

	// Then no command at all is a usage error as well
	code, out, err = runCommand(t)
	req.NoError(err)
	req.Equal(exitUsage, code)
	req.Contains(out, "Available Commands")
}

func TestRun_Log_Level_Flag(t *testing.T) {
	req := require.New(t)
	setupEnv(t)

	code, out, err := runCommand(t, "--log-level", "DEBUG", "plans", "artwork")
	req.NoError(err)
	req.Equal(exitOK, code)
	req.Contains(out, "Single Cover")
}
