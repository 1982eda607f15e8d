package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-http-component/internal/app"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func itoa(i int) string { return strconv.Itoa(i) }

// newTestApp creates an application base directory with an empty route
// directory for serverType "connector".
func newTestApp(t *testing.T, serverID string) *app.Static {
	t.Helper()
	application := app.NewStatic(t.TempDir(), "connector", serverID)
	require.NoError(t, os.MkdirAll(RouteDir(application), 0o755))
	return application
}

// writeRouteFile writes a route descriptor into the application's route dir
func writeRouteFile(t *testing.T, application app.Application, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(RouteDir(application), name), []byte(content), 0o644))
}

// writeKeyPair writes a self-signed certificate for 127.0.0.1 below dir and
// returns the key and certificate file names relative to dir.
func writeKeyPair(t *testing.T, dir string) (string, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	keyFile := filepath.Join("config", "server.key")
	certFile := filepath.Join("config", "server.crt")
	require.NoError(t, os.WriteFile(filepath.Join(dir, keyFile),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, certFile),
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o644))

	return keyFile, certFile
}
