// Package config handles configuration loading and merging for gotestreport.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--title, --output, --format, --palette, --addr, --history, ...)
//  2. Environment variables (GOTESTREPORT_TITLE, GOTESTREPORT_OUTPUT,
//     GOTESTREPORT_FORMAT, GOTESTREPORT_PALETTE, GOTESTREPORT_HISTORY, NO_COLOR)
//  3. YAML config file (.gotestreport.yaml in the working directory, or
//     $XDG_CONFIG_HOME/gotestreport/config.yaml)
//  4. Hardcoded defaults
//
// When a higher-priority source sets a value, it overrides any lower-priority values.
// The resolved configuration records which source supplied each value.
//
// # Environment Variables
//
//   - NO_COLOR: any non-empty value selects the mono palette unless a
//     palette is given on the command line or in GOTESTREPORT_PALETTE
//   - GOTESTREPORT_HISTORY: "true" or "1" records each run in the history database
package config
