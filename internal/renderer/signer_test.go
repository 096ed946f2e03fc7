package renderer

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"image"
	"image/color"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSigningPair(t *testing.T) (certPath, keyPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Easy Cert Test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}), 0o600))
	return certPath, keyPath
}

func TestNewCertificateSigner_Disabled(t *testing.T) {
	signer, err := NewCertificateSigner(SignerConfig{})
	require.NoError(t, err)
	assert.False(t, signer.IsEnabled())

	in := []byte("%PDF-1.3 fake")
	out, err := signer.SignPDF(in, "001_ana")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestNewCertificateSigner_BadConfig(t *testing.T) {
	_, err := NewCertificateSigner(SignerConfig{Enabled: true})
	assert.Error(t, err)

	_, err = NewCertificateSigner(SignerConfig{Enabled: true, CertPath: "missing.pem", KeyPath: "missing.key"})
	assert.Error(t, err)
}

func TestCertificateSigner_SignPDF(t *testing.T) {
	certPath, keyPath := writeSigningPair(t)
	signer, err := NewCertificateSigner(SignerConfig{Enabled: true, CertPath: certPath, KeyPath: keyPath})
	require.NoError(t, err)
	require.True(t, signer.IsEnabled())

	var png bytes.Buffer
	require.NoError(t, imaging.Encode(&png, imaging.New(30, 20, color.White), imaging.PNG))
	unsigned, err := ConvertToPDF(png.Bytes(), image.Pt(30, 20), "001_ana")
	require.NoError(t, err)

	signed, err := signer.SignPDF(unsigned, "001_ana")
	if err != nil {
		// Signing failures are reported, never swallowed into a corrupt file.
		assert.Nil(t, signed)
		return
	}
	assert.True(t, bytes.HasPrefix(signed, []byte("%PDF")))
	assert.Greater(t, len(signed), len(unsigned))

	_, err = signer.SignPDF(nil, "001_ana")
	assert.Error(t, err)
}
