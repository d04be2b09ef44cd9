package gemini

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/idna"

	"github.com/studiowebux/gemcli/internal/gemtext"
)

const (
	DefaultPort           = "1965"
	DefaultConnectTimeout = 4 * time.Second
	DefaultMaxRedirects   = 5

	// maxHeaderLength is the header limit from the protocol: two digits,
	// a space, 1024 bytes of meta and CRLF.
	maxHeaderLength = 1029
)

var errHeaderTooLong = errors.New("header exceeds maximum length")

// CertVerifier decides whether a server certificate is trusted for host:port.
type CertVerifier interface {
	VerifyCertificate(host, port string, cert *x509.Certificate) error
}

// CertVerifierFunc adapts a function to CertVerifier.
type CertVerifierFunc func(host, port string, cert *x509.Certificate) error

func (f CertVerifierFunc) VerifyCertificate(host, port string, cert *x509.Certificate) error {
	return f(host, port, cert)
}

// Response is a successful transaction.
type Response struct {
	// URL is the address the body was served from, after redirects.
	URL       *url.URL
	Status    Status
	MediaType MediaType
	Body      string
	Redirects int
}

// Lines parses the body as a gemtext document.
func (r *Response) Lines() []gemtext.Line {
	return gemtext.ParseDocument(r.Body)
}

// Client performs one-shot transactions. The zero value is usable and
// accepts every server certificate.
type Client struct {
	ConnectTimeout time.Duration
	MaxRedirects   int
	// Verifier is consulted after the TLS handshake. Nil accepts any
	// certificate.
	Verifier CertVerifier
	Logger   *slog.Logger
}

// NewClient returns a client with default limits.
func NewClient(verifier CertVerifier, logger *slog.Logger) *Client {
	return &Client{
		ConnectTimeout: DefaultConnectTimeout,
		MaxRedirects:   DefaultMaxRedirects,
		Verifier:       verifier,
		Logger:         logger,
	}
}

// Transact requests u and follows redirects until a body or an error is
// produced. Each hop opens its own connection.
func (c *Client) Transact(ctx context.Context, u *url.URL) (*Response, error) {
	if u == nil {
		return nil, &Error{Kind: KindInvalidURL, Err: errors.New("nil url")}
	}

	maxRedirects := c.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}

	current := u
	for redirects := 0; ; redirects++ {
		status, body, err := c.roundTrip(ctx, current)
		if err != nil {
			return nil, err
		}

		switch status.Class {
		case ClassSuccess:
			mt := ParseMediaType(status.Meta)
			if mt.Type != MediaTypeGemtext {
				return nil, &Error{
					Kind: KindUnsupportedContentType,
					Code: status.Code,
					Meta: mt.Type,
					URL:  current.String(),
				}
			}
			return &Response{
				URL:       current,
				Status:    status,
				MediaType: mt,
				Body:      DecodeBody(body, mt.Charset),
				Redirects: redirects,
			}, nil

		case ClassRedirect:
			if status.Meta == "" {
				return nil, &Error{
					Kind: KindStatusParse,
					Code: status.Code,
					Meta: status.String(),
					URL:  current.String(),
					Err:  errors.New("redirect without target"),
				}
			}
			if redirects >= maxRedirects {
				return nil, &Error{Kind: KindRedirectLoop, URL: u.String()}
			}
			next, err := Qualify(current, status.Meta)
			if err != nil {
				return nil, err
			}
			c.logger().Debug("following redirect", "from", current.String(), "to", next.String(), "code", status.Code)
			current = next

		case ClassTemporaryFailure:
			return nil, &Error{Kind: KindTemporaryFailure, Code: status.Code, Meta: status.Meta, URL: current.String()}

		case ClassPermanentFailure:
			return nil, &Error{Kind: KindPermanentFailure, Code: status.Code, Meta: status.Meta, URL: current.String()}

		default:
			return nil, &Error{Kind: KindStatusParse, Meta: status.String(), URL: current.String()}
		}
	}
}

// roundTrip opens one connection, sends the request line and reads the
// header. The body is only read for success responses.
func (c *Client) roundTrip(ctx context.Context, u *url.URL) (Status, []byte, error) {
	host, port, err := c.address(u)
	if err != nil {
		return Status{}, nil, err
	}

	conn, err := c.dial(ctx, host, port)
	if err != nil {
		var mismatch *Error
		if errors.As(err, &mismatch) && mismatch.Kind == KindCertificateMismatch {
			return Status{}, nil, mismatch
		}
		return Status{}, nil, &Error{Kind: KindIO, URL: u.String(), Err: err}
	}
	defer conn.Close()

	request := u.String() + "\r\n"
	c.logger().Debug("sending request", "url", u.String(), "addr", net.JoinHostPort(host, port))
	if _, err := io.WriteString(conn, request); err != nil {
		return Status{}, nil, &Error{Kind: KindIO, URL: u.String(), Err: fmt.Errorf("write request: %w", err)}
	}

	reader := bufio.NewReader(conn)
	header, err := readHeader(reader)
	if err != nil {
		switch {
		case errors.Is(err, errHeaderTooLong):
			return Status{}, nil, &Error{Kind: KindStatusParse, URL: u.String(), Err: err}
		case errors.Is(err, io.EOF) && header == "":
			return Status{}, nil, &Error{Kind: KindStatusParse, URL: u.String(), Err: errors.New("connection closed before header")}
		case !errors.Is(err, io.EOF):
			return Status{}, nil, &Error{Kind: KindIO, URL: u.String(), Err: fmt.Errorf("read header: %w", err)}
		}
	}

	status, err := ParseStatus(header)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			perr.URL = u.String()
		}
		return Status{}, nil, err
	}
	c.logger().Info("response", "url", u.String(), "status", status.Code, "meta", status.Meta)

	if status.Class != ClassSuccess {
		return status, nil, nil
	}

	var body bytes.Buffer
	if _, err := body.ReadFrom(reader); err != nil && !isPeerClose(err) {
		return Status{}, nil, &Error{Kind: KindIO, URL: u.String(), Err: fmt.Errorf("read body: %w", err)}
	}
	return status, body.Bytes(), nil
}

func (c *Client) address(u *url.URL) (string, string, error) {
	if u.Scheme != "" && u.Scheme != Scheme {
		return "", "", &Error{Kind: KindInvalidURL, URL: u.String(), Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	host := u.Hostname()
	if host == "" {
		return "", "", &Error{Kind: KindNoHost, URL: u.String()}
	}

	if net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", "", &Error{Kind: KindInvalidHostName, URL: u.String(), Err: err}
		}
		host = ascii
	}

	port := u.Port()
	if port == "" {
		port = DefaultPort
	}
	return host, port, nil
}

func (c *Client) dial(ctx context.Context, host, port string) (net.Conn, error) {
	timeout := c.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config: &tls.Config{
			ServerName: host,
			MinVersion: tls.VersionTLS12,
			// Trust is decided by Verifier, not by the system roots.
			InsecureSkipVerify: true,
			VerifyConnection: func(cs tls.ConnectionState) error {
				if c.Verifier == nil {
					return nil
				}
				if len(cs.PeerCertificates) == 0 {
					return errors.New("server sent no certificate")
				}
				return c.Verifier.VerifyCertificate(host, port, cs.PeerCertificates[0])
			},
		},
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", net.JoinHostPort(host, port), err)
	}
	return conn, nil
}

func readHeader(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for sb.Len() <= maxHeaderLength {
		b, err := r.ReadByte()
		if err != nil {
			return sb.String(), err
		}
		if b == '\n' {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
	return sb.String(), errHeaderTooLong
}

// isPeerClose reports whether err is the server ending the body, which is
// how the protocol delimits it.
func isPeerClose(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED)
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
