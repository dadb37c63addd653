// Package cli implements the survivald command tree: serve, check, predict,
// version and shell completion. cmd/survivald is a thin wrapper around Main.
package cli
