package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// CertificateError represents a certificate-related error (generation, writing, validation).
type CertificateError struct {
	// Operation describes what certificate operation failed
	Operation string
	// Path is the certificate file path (if applicable)
	Path string
	// Underlying error
	Err error
}

func (e *CertificateError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("certificate error during %s (file: %s): %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("certificate error during %s: %v", e.Operation, e.Err)
}

func (e *CertificateError) Unwrap() error {
	return e.Err
}

// Params holds parameters for generating a self-signed server certificate.
type Params struct {
	// CommonName is the CN field (default: localhost)
	CommonName string
	// Organization is the O field (default: webli)
	Organization string
	// Hosts are DNS names or IP addresses placed in the SANs
	Hosts []string
	// ValidDays is certificate validity in days (default: 365)
	ValidDays int
	// KeyBits is the RSA key size (default: 2048)
	KeyBits int
}

// DefaultParams returns parameters suitable for local development.
func DefaultParams() Params {
	return Params{
		CommonName:   "localhost",
		Organization: "webli",
		Hosts:        []string{"localhost", "127.0.0.1", "::1"},
		ValidDays:    365,
		KeyBits:      2048,
	}
}

// ServerCert represents a generated server certificate.
type ServerCert struct {
	// CertPEM is the certificate in PEM format
	CertPEM []byte
	// KeyPEM is the private key in PEM format
	KeyPEM []byte
	// Certificate is the parsed x509 certificate
	Certificate *x509.Certificate
}

// Generate creates a self-signed RSA certificate for params.
//   - SHA-256 signature
//   - Key usage: digitalSignature, keyEncipherment, certSign
//   - Extended key usage: serverAuth
//   - Hosts split into DNS and IP SANs
func Generate(params Params) (*ServerCert, error) {
	defaults := DefaultParams()
	if params.CommonName == "" {
		params.CommonName = defaults.CommonName
	}
	if params.Organization == "" {
		params.Organization = defaults.Organization
	}
	if len(params.Hosts) == 0 {
		params.Hosts = defaults.Hosts
	}
	if params.ValidDays <= 0 {
		params.ValidDays = defaults.ValidDays
	}
	if params.KeyBits <= 0 {
		params.KeyBits = defaults.KeyBits
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, params.KeyBits)
	if err != nil {
		return nil, &CertificateError{Operation: "generate_key", Err: err}
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, &CertificateError{Operation: "generate_serial", Err: err}
	}

	notBefore := time.Now().Add(-time.Minute)
	notAfter := notBefore.AddDate(0, 0, params.ValidDays)

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{params.Organization},
			CommonName:   params.CommonName,
		},
		NotBefore: notBefore,
		NotAfter:  notAfter,

		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment | x509.KeyUsageCertSign,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},

		// Self-signed, so the certificate is its own issuer.
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	for _, h := range params.Hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, &CertificateError{Operation: "create_certificate", Err: err}
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, &CertificateError{Operation: "parse_certificate", Err: err}
	}

	return &ServerCert{
		CertPEM: pem.EncodeToMemory(&pem.Block{
			Type:  "CERTIFICATE",
			Bytes: certDER,
		}),
		KeyPEM: pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
		}),
		Certificate: cert,
	}, nil
}

// WriteFiles writes the certificate and key as PEM files. The key file is
// only readable by the owner.
func (sc *ServerCert) WriteFiles(certPath, keyPath string) error {
	for _, p := range []string{certPath, keyPath} {
		if dir := filepath.Dir(p); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return &CertificateError{Operation: "write", Path: p, Err: err}
			}
		}
	}

	if err := os.WriteFile(certPath, sc.CertPEM, 0o644); err != nil {
		return &CertificateError{Operation: "write", Path: certPath, Err: err}
	}
	if err := os.WriteFile(keyPath, sc.KeyPEM, 0o600); err != nil {
		return &CertificateError{Operation: "write", Path: keyPath, Err: err}
	}
	return nil
}

// TLSCertificate returns the pair as a tls.Certificate.
func (sc *ServerCert) TLSCertificate() (tls.Certificate, error) {
	cert, err := tls.X509KeyPair(sc.CertPEM, sc.KeyPEM)
	if err != nil {
		return tls.Certificate{}, &CertificateError{Operation: "load", Err: err}
	}
	return cert, nil
}

// CertPool returns a pool that trusts only this certificate. Clients use it
// to talk to a server presenting the certificate.
func (sc *ServerCert) CertPool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(sc.Certificate)
	return pool
}

// Validate checks that a PEM certificate can serve TLS: it parses, is
// currently valid, and allows server authentication.
func Validate(certPEM []byte, now time.Time) error {
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return &CertificateError{Operation: "validate", Err: fmt.Errorf("not a PEM certificate")}
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return &CertificateError{
			Operation: "validate",
			Err:       fmt.Errorf("failed to parse certificate: %w", err),
		}
	}

	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return &CertificateError{
			Operation: "validate",
			Err:       fmt.Errorf("certificate valid from %s to %s", cert.NotBefore.Format(time.RFC3339), cert.NotAfter.Format(time.RFC3339)),
		}
	}

	if len(cert.ExtKeyUsage) > 0 {
		hasServerAuth := false
		for _, usage := range cert.ExtKeyUsage {
			if usage == x509.ExtKeyUsageServerAuth || usage == x509.ExtKeyUsageAny {
				hasServerAuth = true
				break
			}
		}
		if !hasServerAuth {
			return &CertificateError{
				Operation: "validate",
				Err:       fmt.Errorf("certificate must have ExtKeyUsageServerAuth"),
			}
		}
	}

	return nil
}
