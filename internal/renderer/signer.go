package renderer

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	digitorus_pdf "github.com/digitorus/pdf"
	"github.com/digitorus/pdfsign/sign"
)

// SignerConfig mirrors the signing_* configuration keys.
type SignerConfig struct {
	Enabled  bool
	CertPath string
	KeyPath  string
}

type CertificateSigner struct {
	certificate *x509.Certificate
	privateKey  *rsa.PrivateKey
	enabled     bool
}

func NewCertificateSigner(cfg SignerConfig) (*CertificateSigner, error) {
	if !cfg.Enabled {
		slog.Info("PDF signing disabled in configuration")
		return &CertificateSigner{enabled: false}, nil
	}

	if cfg.CertPath == "" || cfg.KeyPath == "" {
		return nil, fmt.Errorf("signing enabled but certificate or key path not configured")
	}

	certificate, err := loadCertificate(cfg.CertPath)
	if err != nil {
		return nil, err
	}

	privateKey, err := loadPrivateKey(cfg.KeyPath)
	if err != nil {
		return nil, err
	}

	slog.Info("Certificate signer initialized successfully",
		"cert_subject", certificate.Subject.String(),
		"cert_expiry", certificate.NotAfter)

	return &CertificateSigner{
		certificate: certificate,
		privateKey:  privateKey,
		enabled:     true,
	}, nil
}

func loadCertificate(path string) (*x509.Certificate, error) {
	certPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate file %s: %w", path, err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to decode certificate PEM from %s", path)
	}

	certificate, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	return certificate, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file %s: %w", path, err)
	}

	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to decode private key PEM from %s", path)
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		return privateKey, nil
	}

	// Try PKCS8 format as fallback
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA format")
	}
	return rsaKey, nil
}

// SignPDF applies a certification signature. A disabled signer returns the
// input unchanged; a signing failure returns the error so callers can keep the
// unsigned document.
func (s *CertificateSigner) SignPDF(pdfBytes []byte, stem string) (signed []byte, err error) {
	if !s.IsEnabled() {
		return pdfBytes, nil
	}
	if len(pdfBytes) == 0 {
		return nil, errors.New("empty PDF bytes")
	}

	signData := sign.SignData{
		Signature: sign.SignDataSignature{
			Info: sign.SignDataSignatureInfo{
				Name:     "Easy Cert Batch",
				Location: "Certificate Generator",
				Reason:   fmt.Sprintf("Certificate of completion %s", stem),
				Date:     time.Now(),
			},
			CertType:   sign.CertificationSignature,
			DocMDPPerm: sign.AllowFillingExistingFormFieldsAndSignaturesPerms,
		},
		Signer:      s.privateKey,
		Certificate: s.certificate,
	}

	// pdfsign panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic occurred during PDF signing", "panic", r, "stem", stem)
			signed, err = nil, fmt.Errorf("pdf signing panicked: %v", r)
		}
	}()

	input := bytes.NewReader(pdfBytes)
	pdfReader, err := digitorus_pdf.NewReader(input, int64(len(pdfBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF for signing: %w", err)
	}

	if _, err := input.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var output bytes.Buffer
	if err := sign.Sign(input, &output, pdfReader, int64(len(pdfBytes)), signData); err != nil {
		return nil, fmt.Errorf("failed to sign PDF: %w", err)
	}
	if output.Len() == 0 {
		return nil, errors.New("signing produced empty output")
	}

	slog.Debug("PDF signed", "stem", stem, "original_size", len(pdfBytes), "signed_size", output.Len())
	return output.Bytes(), nil
}

func (s *CertificateSigner) IsEnabled() bool {
	return s != nil && s.enabled && s.privateKey != nil && s.certificate != nil
}
