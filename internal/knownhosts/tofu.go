package knownhosts

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/studiowebux/gemcli/internal/gemini"
)

// Fingerprint is the hex SHA-256 of the certificate's public key info, so
// a renewed certificate with the same key keeps its pin.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return hex.EncodeToString(sum[:])
}

// TOFU trusts the first certificate seen for a host and rejects a different
// one until the pinned certificate expires.
type TOFU struct {
	Store  Store
	Logger *slog.Logger
	Now    func() time.Time
}

var _ gemini.CertVerifier = (*TOFU)(nil)

func NewTOFU(store Store, logger *slog.Logger) *TOFU {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TOFU{Store: store, Logger: logger, Now: time.Now}
}

func (t *TOFU) VerifyCertificate(host, port string, cert *x509.Certificate) error {
	now := t.Now()
	fp := Fingerprint(cert)

	pin, found, err := t.Store.Lookup(host, port)
	if err != nil {
		return fmt.Errorf("known hosts lookup: %w", err)
	}

	next := Pin{
		Host:        host,
		Port:        port,
		Fingerprint: fp,
		NotAfter:    cert.NotAfter,
		FirstSeen:   pin.FirstSeen,
		LastSeen:    now,
	}

	switch {
	case !found:
		t.Logger.Info("pinning new host", "host", host, "port", port, "fingerprint", fp)
		next.FirstSeen = now

	case pin.Fingerprint == fp:
		t.Logger.Debug("certificate matches pin", "host", host, "port", port)

	case pin.Expired(now):
		t.Logger.Warn("pinned certificate expired, re-pinning", "host", host, "port", port,
			"old", pin.Fingerprint, "new", fp)
		next.FirstSeen = now

	default:
		t.Logger.Warn("certificate does not match pin", "host", host, "port", port,
			"pinned", pin.Fingerprint, "presented", fp)
		return &gemini.Error{
			Kind: gemini.KindCertificateMismatch,
			URL:  host + ":" + port,
			Meta: fp,
			Err:  fmt.Errorf("pinned %s valid until %s", pin.Fingerprint, pin.NotAfter.Format(time.DateOnly)),
		}
	}

	if err := t.Store.Save(next); err != nil {
		return fmt.Errorf("known hosts save: %w", err)
	}
	return nil
}
