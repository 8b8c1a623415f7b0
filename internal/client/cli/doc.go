// Package cli implements the dogwalk command-line client.
//
// NewRootCmd builds the cobra command tree. Every command loads the layered
// configuration, opens a client.Client over the local data directory and
// closes it on return, so the saved session and the durable cache carry over
// between invocations.
//
// Commands:
//   - login, logout, whoami
//   - profile [id]
//   - get <path>
//   - image <id> [--tier cache|document] [-o file]
//   - cache prune, cache clear
package cli
