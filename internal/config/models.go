package config

import "time"

// File is the on-disk configuration of the webli server.
type File struct {
	// Version is the config schema version (currently 1)
	Version int            `yaml:"version"`
	Server  ServerSection  `yaml:"server"`
	Log     LogSection     `yaml:"log"`
	Storage StorageSection `yaml:"storage"`
	Errors  ErrorsSection  `yaml:"errors,omitempty"`
	MDNS    MDNSSection    `yaml:"mdns"`
}

// ServerSection configures the listener and connection handling.
type ServerSection struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`

	// ReadBufferSize is the size of the single read holding a request
	ReadBufferSize int `yaml:"read_buffer_size"`
	// MaxConns bounds concurrent connections; 0 means unbounded
	MaxConns int `yaml:"max_conns"`

	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty"`

	// AccessLog writes one line per answered request
	AccessLog bool `yaml:"access_log"`
}

// LogSection configures logging.
type LogSection struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// StorageSection configures file loading for FromStorage responses.
type StorageSection struct {
	// Root is the directory storage paths are resolved against
	Root string `yaml:"root"`
	// Cache keeps files in memory until they change on disk
	Cache bool `yaml:"cache"`
}

// ErrorsSection overrides the built-in error pages.
type ErrorsSection struct {
	NotFound     *ErrorPage `yaml:"not_found,omitempty"`
	BadRequest   *ErrorPage `yaml:"bad_request,omitempty"`
	Unauthorized *ErrorPage `yaml:"unauthorized,omitempty"`
}

// ErrorPage is a replacement body for one error response.
type ErrorPage struct {
	Body        string `yaml:"body"`
	ContentType string `yaml:"content_type,omitempty"`
}

// MDNSSection configures service advertisement on the local network.
type MDNSSection struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
	Service  string `yaml:"service"`
	Domain   string `yaml:"domain"`
}
