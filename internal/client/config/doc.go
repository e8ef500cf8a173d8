// Package config loads runtime configuration for the savethatagain CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables (SAVETHATAGAIN_SERVER, SAVETHATAGAIN_HOME,
//     SAVETHATAGAIN_TIMEOUT).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string      base URL of the server API
//	-home string   directory holding the local session database
//	-timeout int   per-request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "home_dir": "/home/me/.savethatagain",
//	  "request_timeout": "30s"
//	}
package config
