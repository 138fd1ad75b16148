package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MINAqwq/LibWebli/internal/config"
	"github.com/MINAqwq/LibWebli/internal/demo"
	"github.com/MINAqwq/LibWebli/internal/discovery"
	"github.com/MINAqwq/LibWebli/internal/logging"
	"github.com/MINAqwq/LibWebli/internal/router"
	"github.com/MINAqwq/LibWebli/internal/server"
	"github.com/MINAqwq/LibWebli/internal/storage"
	"github.com/MINAqwq/LibWebli/internal/ui"
	"github.com/MINAqwq/LibWebli/internal/version"
)

// Serve command flags
var (
	serveHost       string
	servePort       int
	serveCert       string
	serveKey        string
	serveLogLevel   string
	serveStorage    string
	serveMaxConns   int
	serveAdminToken string
	serveMDNS       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTPS server",
	Long: `Start the webli server with the demo application mounted.

A certificate and key are required. Create a self-signed pair for local
development with 'webli gencert'.`,
	Example: `  # Serve with cert.pem and key.pem from the working directory
  webli serve

  # Custom port with debug logging
  webli serve --port 9443 --log-level debug

  # Serve files for /static/unauthorized from ./www and advertise via mDNS
  webli serve --storage ./www --mdns`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveHost, "host", "", "Listen address (empty = all interfaces)")
	f.IntVar(&servePort, "port", 8443, "Listen port")
	f.StringVar(&serveCert, "cert", "", "Path to the PEM certificate")
	f.StringVar(&serveKey, "key", "", "Path to the PEM private key")
	f.StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&serveStorage, "storage", "", "Directory storage paths are resolved against")
	f.IntVar(&serveMaxConns, "max-conns", 0, "Maximum concurrent connections (0 = unbounded)")
	f.StringVar(&serveAdminToken, "admin-token", "", "Token required by /admin (default: "+demo.DefaultAdminToken+")")
	f.BoolVar(&serveMDNS, "mdns", false, "Advertise the server via mDNS")
}

// applyServeFlags copies explicitly set flags over the loaded configuration.
func applyServeFlags(cmd *cobra.Command, f *config.File) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		f.Server.Host = serveHost
	}
	if flags.Changed("port") {
		f.Server.Port = servePort
	}
	if flags.Changed("cert") {
		f.Server.Cert = serveCert
	}
	if flags.Changed("key") {
		f.Server.Key = serveKey
	}
	if flags.Changed("log-level") {
		f.Log.Level = serveLogLevel
	}
	if flags.Changed("storage") {
		f.Storage.Root = serveStorage
	}
	if flags.Changed("max-conns") {
		f.Server.MaxConns = serveMaxConns
	}
	if flags.Changed("mdns") {
		f.MDNS.Enabled = serveMDNS
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	f, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, f)
	if err := f.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(f.Log.Level); err != nil {
		return err
	}
	defer logging.Sync()

	opts := f.ServerOptions()
	if f.Storage.Cache {
		cache, err := storage.NewCache(f.Storage.Root)
		if err != nil {
			return fmt.Errorf("failed to create storage cache: %w", err)
		}
		defer func() { _ = cache.Close() }()
		opts = append(opts, server.WithStorage(cache))
	}

	app := demo.New(demo.Options{AdminToken: serveAdminToken, ServiceVersion: version.Version})
	r := app.Router()

	srv, err := server.New(f.ServerConfig(), r, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	printBanner(f, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if f.MDNS.Enabled {
		adv, err := discovery.Advertise(discovery.AdvertiseConfig{
			Instance: f.MDNS.Instance,
			Service:  f.MDNS.Service,
			Domain:   f.MDNS.Domain,
			Port:     f.Server.Port,
			Version:  version.Version,
		})
		if err != nil {
			logging.Warn("mDNS advertisement disabled", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, server.ErrServerClosed) {
		return err
	}
	logging.Info("Server stopped")
	return nil
}

func printBanner(f *config.File, r *router.Router) {
	sc := f.ServerConfig()
	storageRoot := f.Storage.Root
	if storageRoot == "" {
		storageRoot = "(working directory)"
	}
	if f.Storage.Cache {
		storageRoot += " [cached]"
	}

	routes := r.Routes()
	h := ui.NewHeader("webli server", "webli serve "+version.Version).
		Add("Listen", "https://"+sc.Addr()).
		Add("Certificate", f.Server.Cert).
		Add("Storage", storageRoot).
		Add("Routes", strconv.Itoa(len(routes))).
		Add("mDNS", strconv.FormatBool(f.MDNS.Enabled))

	rows := make([][]string, 0, len(routes))
	for _, rt := range routes {
		rows = append(rows, []string{rt.Method, rt.Path, strconv.Itoa(rt.Handlers)})
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader(h)
	p.PrintTable([]string{"METHOD", "PATH", "HANDLERS"}, rows)
	p.Newline()
}
