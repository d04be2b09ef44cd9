// Package geminitest provides an in-process Gemini server for tests.
package geminitest

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Handler returns the raw response for one request line (without CRLF).
type Handler func(request string) []byte

// Respond builds a raw response from a header and a body.
func Respond(header, body string) []byte {
	return []byte(header + "\r\n" + body)
}

// Static returns a handler that always answers with the same response.
func Static(header, body string) Handler {
	return func(string) []byte { return Respond(header, body) }
}

// Server is a TLS listener on 127.0.0.1 that answers every connection with
// Handler and then closes it.
type Server struct {
	Addr string

	listener net.Listener
	handler  Handler
	requests atomic.Int64
	wg       sync.WaitGroup

	mu   sync.Mutex
	cert tls.Certificate
}

// NewServer starts a server with a fresh self-signed certificate. It is
// closed when the test ends.
func NewServer(t testing.TB, h Handler) *Server {
	t.Helper()

	s := &Server{handler: h, cert: SelfSigned(t, "127.0.0.1", time.Now().Add(24*time.Hour))}

	cfg := &tls.Config{
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			c := s.cert
			return &c, nil
		},
	}

	ln, err := tls.Listen("tcp", "127.0.0.1:0", cfg)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	s.listener = ln
	s.Addr = ln.Addr().String()

	s.wg.Add(1)
	go s.serve()

	t.Cleanup(s.Close)
	return s
}

// URL returns a gemini URL for path on this server.
func (s *Server) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "gemini://" + s.Addr + path
}

// Requests returns how many requests were answered.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// SetCertificate replaces the certificate presented on new connections.
func (s *Server) SetCertificate(cert tls.Certificate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cert = cert
}

// Certificate returns the parsed leaf currently presented.
func (s *Server) Certificate() *x509.Certificate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cert.Leaf
}

func (s *Server) Close() {
	s.listener.Close()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	s.requests.Add(1)
	conn.Write(s.handler(strings.TrimRight(line, "\r\n")))
}

// SelfSigned generates an ECDSA certificate for host valid until notAfter.
func SelfSigned(t testing.TB, host string, notAfter time.Time) tls.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		t.Fatalf("failed to generate serial: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: host},
		NotBefore:    notAfter.Add(-48 * time.Hour),
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	if ip := net.ParseIP(host); ip != nil {
		tmpl.IPAddresses = []net.IP{ip}
	} else {
		tmpl.DNSNames = []string{host}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse certificate: %v", err)
	}

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}
}

// ClosedAddr returns a loopback address nothing is listening on.
func ClosedAddr(t testing.TB) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}
