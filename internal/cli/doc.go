// Package cli implements the pingraph command-line interface.
//
// The root command is the graph itself: its arguments are targets, and its
// flags override values from .pingraph.yaml. Only flags that were set on the
// command line win over the file.
//
// # Command Structure
//
//	pingraph [hosts...]           - Graph ping latency
//	pingraph --cmd [commands...]  - Graph command run time
//	pingraph init [targets...]    - Create .pingraph.yaml
//	pingraph add <target>...      - Append targets to the config
//	pingraph completion <shell>   - Print a completion script
//	pingraph version              - Print build information
//
// # Graph Run
//
// graphCommand loads and validates the merged config, opens the log file,
// then prepares the run: it picks the ping grammar (locally or on the --via
// host), resolves hostnames, and builds the opener each target worker uses.
//
// On a terminal the monitor dashboard runs in the alternate screen and the
// last frame is printed after it exits, unless --clear is given. Otherwise
// one line per result is written to stdout.
//
// The exit status is non-zero when no target could be started, or when the
// dashboard quit because every target failed.
package cli
