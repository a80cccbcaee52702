// Package config loads runtime configuration for the jars CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are YAML, everything else is JSON.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   store base URL (http mode)
//	-m string   http or local
//	-t int      request timeout in seconds
//	-d string   session database file
//	-s string   seed file (local mode)
//	-debug      request/response logging
//
// # File schema
//
//	{
//	  "server_url": "https://store.example",
//	  "mode": "http",
//	  "timeout": "5s",
//	  "session_db": "jars.db",
//	  "seed_file": "seed.json",
//	  "debug": false
//	}
//
// Durations accept strings like "5s" or integer nanoseconds.
//
// Note: environment variables are not read.
package config
