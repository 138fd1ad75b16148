package discovery

import (
	"errors"
	"fmt"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/MINAqwq/LibWebli/internal/logging"
)

// AdvertiseConfig describes the service record published for a server.
type AdvertiseConfig struct {
	Instance string
	Service  string
	Domain   string
	Port     int
	// Version is published as the "version" TXT entry when set.
	Version string
	// Text holds extra KEY=VALUE TXT entries.
	Text []string
}

// Advertiser publishes a webli server via mDNS until Shutdown is called.
type Advertiser struct {
	server *zeroconf.Server
	config AdvertiseConfig
}

// Advertise registers the service on all multicast capable interfaces.
func Advertise(cfg AdvertiseConfig) (*Advertiser, error) {
	if cfg.Instance == "" {
		return nil, errors.New("mDNS instance name is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("mDNS port %d out of range", cfg.Port)
	}
	if cfg.Service == "" {
		cfg.Service = ServiceType
	}
	if cfg.Domain == "" {
		cfg.Domain = ServiceDomain
	}

	srv, err := zeroconf.Register(cfg.Instance, cfg.Service, cfg.Domain, cfg.Port, txtRecords(cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising via mDNS",
		zap.String("instance", cfg.Instance),
		zap.String("service", cfg.Service),
		zap.String("domain", cfg.Domain),
		zap.Int("port", cfg.Port),
	)
	return &Advertiser{server: srv, config: cfg}, nil
}

// Shutdown withdraws the record. It is safe to call on a nil Advertiser.
func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
	logging.Debug("mDNS advertisement withdrawn", zap.String("instance", a.config.Instance))
}

func txtRecords(cfg AdvertiseConfig) []string {
	txt := []string{serverTXTKey + "=" + serverTXTVal, "path=/"}
	if cfg.Version != "" {
		txt = append(txt, "version="+cfg.Version)
	}
	return append(txt, cfg.Text...)
}
