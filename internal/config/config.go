package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MINAqwq/LibWebli/internal/logging"
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/router"
	"github.com/MINAqwq/LibWebli/internal/server"
)

const (
	appName = "webli"

	// DefaultFileName is looked up in the working directory when no
	// config path is given.
	DefaultFileName = "webli.yaml"

	currentVersion = 1
)

// Environment variables applied on top of the file.
const (
	EnvHost     = "WEBLI_HOST"
	EnvPort     = "WEBLI_PORT"
	EnvCert     = "WEBLI_CERT"
	EnvKey      = "WEBLI_KEY"
	EnvLogLevel = logging.LogLevelEnvVar
)

// Default returns the configuration used when no file is present.
func Default() *File {
	return &File{
		Version: currentVersion,
		Server: ServerSection{
			Port:           8443,
			Cert:           "cert.pem",
			Key:            "key.pem",
			ReadBufferSize: server.DefaultReadBufferSize,
			AccessLog:      true,
		},
		Log: LogSection{
			Level: "info",
		},
		MDNS: MDNSSection{
			Instance: appName,
			Service:  "_https._tcp",
			Domain:   "local.",
		},
	}
}

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/webli or $HOME/.config/webli
//   - macOS: $HOME/.config/webli
//   - Windows: %LOCALAPPDATA%\webli
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", errors.New("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil

	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil
	}
}

// FindPath returns the first existing config file: DefaultFileName in the
// working directory, then the one in GetConfigDir. It returns "" when
// neither exists.
func FindPath() string {
	candidates := []string{DefaultFileName}
	if dir, err := GetConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, DefaultFileName))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads the YAML file at path on top of Default, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*File, error) {
	f := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if f.Version != currentVersion {
			return nil, fmt.Errorf("unsupported config version: %d (expected %d)", f.Version, currentVersion)
		}
	}

	if err := f.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// ApplyEnv overrides fields from the environment through lookup.
func (f *File) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHost); ok {
		f.Server.Host = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		f.Server.Port = port
	}
	if v, ok := lookup(EnvCert); ok && v != "" {
		f.Server.Cert = v
	}
	if v, ok := lookup(EnvKey); ok && v != "" {
		f.Server.Key = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		f.Log.Level = v
	}
	return nil
}

// Validate checks that the configuration can start a server.
func (f *File) Validate() error {
	s := f.Server
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", s.Port)
	}
	if s.Cert == "" || s.Key == "" {
		return errors.New("server.cert and server.key are required")
	}
	if s.ReadBufferSize < 0 {
		return fmt.Errorf("server.read_buffer_size must not be negative, got %d", s.ReadBufferSize)
	}
	if s.MaxConns < 0 {
		return fmt.Errorf("server.max_conns must not be negative, got %d", s.MaxConns)
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	if _, err := logging.ParseLevel(f.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if f.MDNS.Enabled && (f.MDNS.Instance == "" || f.MDNS.Service == "") {
		return errors.New("mdns.instance and mdns.service are required when mdns is enabled")
	}
	return nil
}

// ServerConfig converts the file into a server configuration.
func (f *File) ServerConfig() *server.Config {
	return &server.Config{
		Host:           f.Server.Host,
		Port:           f.Server.Port,
		CertPath:       f.Server.Cert,
		KeyPath:        f.Server.Key,
		ReadBufferSize: f.Server.ReadBufferSize,
		MaxConns:       f.Server.MaxConns,
		ReadTimeout:    f.Server.ReadTimeout,
		WriteTimeout:   f.Server.WriteTimeout,
		StorageRoot:    f.Storage.Root,
		LogRequests:    f.Server.AccessLog,
	}
}

// ServerOptions returns the server options for configured error pages.
func (f *File) ServerOptions() []server.Option {
	pages := []struct {
		kind   router.Kind
		status int
		page   *ErrorPage
	}{
		{router.KindNotFound, message.StatusNotFound, f.Errors.NotFound},
		{router.KindBadRequest, message.StatusBadRequest, f.Errors.BadRequest},
		{router.KindUnauthorized, message.StatusUnauthorized, f.Errors.Unauthorized},
	}

	var opts []server.Option
	for _, p := range pages {
		if p.page == nil {
			continue
		}
		contentType := p.page.ContentType
		if contentType == "" {
			contentType = "text/html"
		}
		resp := message.NewResponse(p.status, message.Header{
			message.HeaderContentType: contentType,
		}, []byte(p.page.Body))
		opts = append(opts, server.WithDefault(p.kind, resp))
	}
	return opts
}

// Save writes f to path atomically, creating parent directories.
func (f *File) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# webli configuration file
#
# Environment variables WEBLI_HOST, WEBLI_PORT, WEBLI_CERT, WEBLI_KEY and
# WEBLI_LOG_LEVEL override the values below; command line flags override both.

`)
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
