// Package flagx binds configuration fields to command-line flags and
// environment variables, so a config package can declare each setting once
// and layer the sources in a fixed order.
package flagx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Setting describes one field of T.
type Setting[T any] struct {
	Name  string
	Short string
	Env   string
	Usage string
	Get   func(*T) string
	Set   func(*T, string) error
}

func StringVar[T any](name, short, env, usage string, field func(*T) *string) Setting[T] {
	return Setting[T]{
		Name: name, Short: short, Env: env, Usage: usage,
		Get: func(c *T) string { return *field(c) },
		Set: func(c *T, v string) error { *field(c) = v; return nil },
	}
}

func IntVar[T any](name, short, env, usage string, field func(*T) *int) Setting[T] {
	return Setting[T]{
		Name: name, Short: short, Env: env, Usage: usage,
		Get: func(c *T) string { return strconv.Itoa(*field(c)) },
		Set: func(c *T, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*field(c) = n
			return nil
		},
	}
}

func BoolVar[T any](name, short, env, usage string, field func(*T) *bool) Setting[T] {
	return Setting[T]{
		Name: name, Short: short, Env: env, Usage: usage,
		Get: func(c *T) string { return strconv.FormatBool(*field(c)) },
		Set: func(c *T, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*field(c) = b
			return nil
		},
	}
}

func DurationVar[T any](name, short, env, usage string, field func(*T) *time.Duration) Setting[T] {
	return Setting[T]{
		Name: name, Short: short, Env: env, Usage: usage,
		Get: func(c *T) string { return field(c).String() },
		Set: func(c *T, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			*field(c) = d
			return nil
		},
	}
}

// Register adds a string flag per setting, showing the value in defaults as
// the flag default.
func Register[T any](flags *pflag.FlagSet, defaults *T, settings []Setting[T]) {
	for _, s := range settings {
		if s.Name == "" {
			continue
		}
		flags.StringP(s.Name, s.Short, s.Get(defaults), s.Usage)
	}
}

// ApplyEnv sets every field whose variable lookup finds.
func ApplyEnv[T any](cfg *T, settings []Setting[T], lookup func(string) (string, bool)) error {
	for _, s := range settings {
		if s.Env == "" {
			continue
		}
		v, ok := lookup(s.Env)
		if !ok {
			continue
		}
		if err := s.Set(cfg, v); err != nil {
			return fmt.Errorf("env %s: %w", s.Env, err)
		}
	}
	return nil
}

// ApplyFlags sets only the fields whose flag was given explicitly, so
// untouched flags do not mask values from earlier layers.
func ApplyFlags[T any](cfg *T, flags *pflag.FlagSet, settings []Setting[T]) error {
	if flags == nil {
		return nil
	}
	for _, s := range settings {
		if s.Name == "" || !flags.Changed(s.Name) {
			continue
		}
		v, err := flags.GetString(s.Name)
		if err != nil {
			return err
		}
		if err := s.Set(cfg, v); err != nil {
			return fmt.Errorf("flag --%s: %w", s.Name, err)
		}
	}
	return nil
}

// EnvLookup returns a lookup over the process environment, falling back to
// the variables in envFile. A missing envFile is not an error.
func EnvLookup(envFile string) (func(string) (string, bool), error) {
	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}
