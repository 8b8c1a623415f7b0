package cli

import (
	"io"
	"os"

	"github.com/dmitrijs2005/dogwalk/internal/client/client"
)

// Env holds the command tree's injectable dependencies.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// LookupEnv replaces the process environment and .env file when set.
	LookupEnv func(string) (string, bool)
	// ReadPassword reads a password without echo.
	ReadPassword func(w io.Writer) ([]byte, error)
	// ClientOptions are passed to client.New after the logger.
	ClientOptions []client.Option
}

func DefaultEnv() *Env {
	return &Env{
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		ReadPassword: GetPassword,
	}
}
