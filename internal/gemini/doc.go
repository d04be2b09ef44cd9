// Package gemini implements the client side of the Gemini protocol.
//
// A transaction is one TLS connection: the client sends the absolute URL
// followed by CRLF, the server answers with a status header
//
//	<2 digit code><space><meta>\r\n
//
// and, for success responses only, a body that ends when the server closes
// the connection. Client.Transact follows redirects in a bounded loop and
// returns either a *Response or an *Error whose Kind identifies the failure.
//
// Certificates are not checked against system roots. A CertVerifier decides
// trust after the handshake; the knownhosts package provides a
// trust-on-first-use implementation.
package gemini
