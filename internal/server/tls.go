package server

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
)

// Credentials holds PEM-encoded TLS key and certificate material
type Credentials struct {
	Key  []byte
	Cert []byte
}

// LoadCredentials reads the key and certificate files. Relative paths are
// resolved against base; absolute paths are used as given.
func LoadCredentials(base, keyFile, certFile string) (*Credentials, error) {
	key, err := os.ReadFile(resolvePath(base, keyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read TLS key: %w", err)
	}
	cert, err := os.ReadFile(resolvePath(base, certFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read TLS certificate: %w", err)
	}
	return &Credentials{Key: key, Cert: cert}, nil
}

// TLSConfig parses the credentials into a server TLS configuration
func (c *Credentials) TLSConfig() (*tls.Config, error) {
	pair, err := tls.X509KeyPair(c.Cert, c.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid TLS key pair: %w", err)
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{pair},
	}, nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
