// Package config loads the webli server configuration.
//
// Settings come from four layers, each overriding the previous one:
//  1. Built-in defaults (Default)
//  2. A YAML file, webli.yaml in the working directory or the user config
//     directory, or a path given with --config
//  3. Environment variables (WEBLI_HOST, WEBLI_PORT, WEBLI_CERT, WEBLI_KEY,
//     WEBLI_LOG_LEVEL), optionally seeded from a .env file by LoadDotEnv
//  4. Command line flags, applied by the CLI
//
// # File Format
//
//	version: 1
//	server:
//	  host: ""
//	  port: 8443
//	  cert: cert.pem
//	  key: key.pem
//	  read_buffer_size: 2048
//	  max_conns: 0
//	  read_timeout: 30s
//	  access_log: true
//	log:
//	  level: info
//	storage:
//	  root: ./www
//	  cache: true
//	errors:
//	  not_found:
//	    body: "<h1>Nothing here</h1>"
//	mdns:
//	  enabled: true
//	  instance: webli
//	  service: _https._tcp
//	  domain: local.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/webli/webli.yaml or $HOME/.config/webli/webli.yaml
//   - macOS: $HOME/.config/webli/webli.yaml
//   - Windows: %LOCALAPPDATA%\webli\webli.yaml
package config
