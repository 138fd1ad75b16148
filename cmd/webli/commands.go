package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MINAqwq/LibWebli/internal/certs"
	"github.com/MINAqwq/LibWebli/internal/config"
	"github.com/MINAqwq/LibWebli/internal/discovery"
	"github.com/MINAqwq/LibWebli/internal/logging"
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/storage"
	"github.com/MINAqwq/LibWebli/internal/ui"
	"github.com/MINAqwq/LibWebli/internal/webclient"
)

// gencert flags
var (
	gencertCert  string
	gencertKey   string
	gencertHosts []string
	gencertDays  int
	gencertBits  int
	gencertForce bool
)

var gencertCmd = &cobra.Command{
	Use:   "gencert",
	Short: "Generate a self-signed certificate for development",
	Example: `  # cert.pem and key.pem for localhost
  webli gencert

  # Certificate for a LAN address, valid for 30 days
  webli gencert --host 192.168.1.10 --host devbox.local --days 30`,
	RunE: runGencert,
}

func init() {
	def := certs.DefaultParams()
	f := gencertCmd.Flags()
	f.StringVar(&gencertCert, "cert", "cert.pem", "Certificate output path")
	f.StringVar(&gencertKey, "key", "key.pem", "Private key output path")
	f.StringSliceVar(&gencertHosts, "host", def.Hosts, "DNS names or IPs for the certificate SANs")
	f.IntVar(&gencertDays, "days", def.ValidDays, "Validity in days")
	f.IntVar(&gencertBits, "bits", def.KeyBits, "RSA key size")
	f.BoolVar(&gencertForce, "force", false, "Overwrite existing files without asking")
}

func runGencert(cmd *cobra.Command, args []string) error {
	var existing []string
	for _, p := range []string{gencertCert, gencertKey} {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot access %s: %w", p, err)
		}
	}
	if len(existing) > 0 && !gencertForce {
		if !ui.ConfirmOverwrite(cmd.InOrStdin(), cmd.OutOrStdout(), existing...) {
			return errors.New("aborted")
		}
	}

	params := certs.DefaultParams()
	params.Hosts = gencertHosts
	params.ValidDays = gencertDays
	params.KeyBits = gencertBits
	if len(gencertHosts) > 0 {
		params.CommonName = gencertHosts[0]
	}

	sc, err := certs.Generate(params)
	if err != nil {
		return err
	}
	if err := sc.WriteFiles(gencertCert, gencertKey); err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintSuccess("Certificate generated",
		ui.Param{Key: "Certificate", Value: gencertCert},
		ui.Param{Key: "Private key", Value: gencertKey},
		ui.Param{Key: "Subject", Value: sc.Certificate.Subject.CommonName},
		ui.Param{Key: "Hosts", Value: strings.Join(gencertHosts, ", ")},
		ui.Param{Key: "Expires", Value: sc.Certificate.NotAfter.Format(time.RFC1123)},
	)
	return nil
}

// get flags
var (
	getMethod   string
	getHeaders  []string
	getData     string
	getCA       string
	getInsecure bool
	getTimeout  time.Duration
	getVerbose  bool
	getRaw      bool
)

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Send an HTTPS request and show the response",
	Example: `  # Request the demo landing page
  webli get https://localhost:8443/ --ca cert.pem -v

  # Call the guarded admin route
  webli get https://localhost:8443/admin -H 'Token: $1234%' --insecure

  # POST a body and print only the response body
  webli get https://localhost:8443/echo -X POST -d 'hello' --raw --insecure`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	f := getCmd.Flags()
	f.StringVarP(&getMethod, "method", "X", message.MethodGet, "Request method")
	f.StringArrayVarP(&getHeaders, "header", "H", nil, "Request header as 'Key: Value' (repeatable)")
	f.StringVarP(&getData, "data", "d", "", "Request body")
	f.StringVar(&getCA, "ca", "", "PEM file with additional trusted certificates")
	f.BoolVarP(&getInsecure, "insecure", "k", false, "Skip certificate verification")
	f.DurationVar(&getTimeout, "timeout", webclient.DefaultTimeout, "Request timeout")
	f.BoolVarP(&getVerbose, "verbose", "v", false, "Show the response body")
	f.BoolVar(&getRaw, "raw", false, "Print only the response body")
}

func parseHeaders(values []string) (message.Header, error) {
	header := make(message.Header)
	for _, v := range values {
		key, value, ok := strings.Cut(v, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Key: Value'", v)
		}
		header.Set(key, strings.TrimSpace(value))
	}
	return header, nil
}

func clientTLSConfig() (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: getInsecure}
	if getCA == "" {
		return cfg, nil
	}

	pem, err := storage.LoadBytes(getCA)
	if err != nil {
		return nil, err
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", getCA)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

func runGet(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}
	defer logging.Sync()

	return sendRequest(cmd, args[0])
}

// sendRequest performs one request to rawURL using the get flags.
func sendRequest(cmd *cobra.Command, rawURL string) error {
	header, err := parseHeaders(getHeaders)
	if err != nil {
		return err
	}
	tlsConfig, err := clientTLSConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), getTimeout)
	defer cancel()

	if getRaw {
		client, err := webclient.New(rawURL, webclient.WithTLSConfig(tlsConfig))
		if err != nil {
			return err
		}
		resp, err := client.Send(ctx, client.NewRequest(strings.ToUpper(getMethod), header, []byte(getData)))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(resp.Body())
		return err
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "HTTPS Request",
		Command: "webli get " + rawURL,
		Params: []ui.Param{
			{Key: "Method", Value: strings.ToUpper(getMethod)},
			{Key: "URL", Value: rawURL},
			{Key: "Timeout", Value: getTimeout.String()},
		},
		StepNames: []string{"Parse URL", "Connect", "Send request", "Read response"},
		Troubleshooting: []string{
			"Is the server running? Try: webli serve",
			"For self-signed certificates pass --ca cert.pem or --insecure",
			"Set WEBLI_LOG_LEVEL=debug for connection logs",
		},
		Verbose: getVerbose,
		Output:  cmd.OutOrStdout(),
	})

	return runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) (ui.Report, error) {
		onStep(1, ui.StepRunning, "")
		trace := &webclient.Trace{
			Connected: func(state tls.ConnectionState) {
				onStep(2, ui.StepComplete, tls.VersionName(state.Version))
				onStep(3, ui.StepRunning, "")
			},
			WroteRequest: func(n int) {
				onStep(3, ui.StepComplete, strconv.Itoa(n)+" bytes")
				onStep(4, ui.StepRunning, "")
			},
			ReadResponse: func(n int) {
				onStep(4, ui.StepRunning, strconv.Itoa(n)+" bytes")
			},
		}

		client, err := webclient.New(rawURL, webclient.WithTLSConfig(tlsConfig), webclient.WithTrace(trace))
		if err != nil {
			onStep(1, ui.StepFailed, "")
			return ui.Report{}, err
		}
		u := client.URL()
		onStep(1, ui.StepComplete, u.Addr())
		onStep(2, ui.StepRunning, "")

		resp, err := client.Send(ctx, client.NewRequest(strings.ToUpper(getMethod), header, []byte(getData)))
		if err != nil {
			return ui.Report{}, err
		}
		onStep(4, ui.StepComplete, strconv.Itoa(len(resp.Body()))+" byte body")

		status := resp.Status()
		details := []ui.Param{
			{Key: "Status", Value: ui.StatusStyle(status).Render(fmt.Sprintf("%d %s", status, message.StatusText(status)))},
		}
		if ct := resp.GetHeader(message.HeaderContentType); ct != "" {
			details = append(details, ui.Param{Key: "Content-Type", Value: ct})
		}
		details = append(details, ui.Param{Key: "Body", Value: strconv.Itoa(len(resp.Body())) + " bytes"})

		return ui.Report{
			Title:       fmt.Sprintf("%s %s", strings.ToUpper(getMethod), u.String()),
			Details:     details,
			Output:      string(resp.Body()),
			OutputTitle: "Response body",
			Warning:     status >= 400,
		}, nil
	})
}

var (
	discoverTimeout     time.Duration
	discoverInteractive bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find webli servers on the local network",
	Long: `Browse mDNS for servers started with 'webli serve --mdns' and list them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.InitializeFromEnv(); err != nil {
			return err
		}
		defer logging.Sync()

		scanner := discovery.NewScanner()
		scanner.Timeout = discoverTimeout

		if discoverInteractive {
			return pickAndRequest(cmd, scanner)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Scanning for %s for %s...\n", discovery.ServiceType, discoverTimeout)
		instances, err := scanner.Scan(cmd.Context())
		if err != nil {
			return err
		}
		if len(instances) == 0 {
			return ui.RenderOnce(ui.NewWarningResult("No webli servers found",
				ui.Param{Key: "Hint", Value: "start one with: webli serve --mdns"},
			).Render())
		}

		rows := make([][]string, 0, len(instances))
		for _, inst := range instances {
			rows = append(rows, []string{inst.Name, inst.BaseURL(), inst.Hostname, inst.GetMetadata("version")})
		}
		return ui.RenderOnce(ui.RenderTable([]string{"NAME", "URL", "HOST", "VERSION"}, rows))
	},
}

func init() {
	f := discoverCmd.Flags()
	f.DurationVar(&discoverTimeout, "timeout", discovery.DefaultScanTimeout, "How long to listen for answers")
	f.BoolVarP(&discoverInteractive, "interactive", "i", false, "Choose a server and request its landing page")
	f.StringVar(&getCA, "ca", "", "PEM file with additional trusted certificates")
	f.BoolVarP(&getInsecure, "insecure", "k", false, "Skip certificate verification")
}

// pickAndRequest lets the user choose a discovered server, then sends
// GET / to it.
func pickAndRequest(cmd *cobra.Command, scanner *discovery.Scanner) error {
	scan := func(ctx context.Context) ([]ui.PickerItem, error) {
		instances, err := scanner.Scan(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]ui.PickerItem, len(instances))
		for i, inst := range instances {
			items[i] = ui.PickerItem{
				Name:   inst.Name,
				Detail: fmt.Sprintf("%s • %s • %s", inst.BaseURL(), inst.Hostname, inst.GetMetadata("version")),
				Value:  inst.BaseURL() + "/",
			}
		}
		return items, nil
	}

	selected, err := ui.Pick(cmd.Context(), "webli servers", scan)
	if err != nil {
		return err
	}
	if selected == nil {
		return nil
	}

	getMethod = message.MethodGet
	getTimeout = webclient.DefaultTimeout
	getVerbose = true
	return sendRequest(cmd, selected.Value)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default webli.yaml",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFileName
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			if !ui.ConfirmOverwrite(cmd.InOrStdin(), cmd.OutOrStdout(), path) {
				return errors.New("aborted")
			}
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Configuration written", ui.Param{Key: "Path", Value: path})
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
