package httpprobe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/waiwai24/free-ollama/internal/domain"
)

// errorKind maps a transport error onto the probe failure taxonomy. Order
// matters: a dial timeout is a timeout, not a connection failure.
func errorKind(err error) domain.ErrorKind {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return domain.ErrorOther
	case isTimeout(err):
		return domain.ErrorTimeout
	case isTLS(err):
		return domain.ErrorTLS
	case isConnection(err):
		return domain.ErrorConnection
	case isProtocol(err):
		return domain.ErrorProtocol
	default:
		return domain.ErrorOther
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func isTLS(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		alertErr     tls.AlertError
		unknownCA    x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidCert  x509.CertificateInvalidError
		echRejection *tls.ECHRejectionError
	)

	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &recordErr),
		errors.As(err, &alertErr),
		errors.As(err, &unknownCA),
		errors.As(err, &hostnameErr),
		errors.As(err, &invalidCert),
		errors.As(err, &echRejection):
		return true
	}

	msg := err.Error()

	return strings.Contains(msg, "tls: ") || strings.Contains(msg, "server gave HTTP response to HTTPS client")
}

func isConnection(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr) && (opErr.Op == "dial" || opErr.Op == "read" || opErr.Op == "write")
}

func isProtocol(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		msg := urlErr.Err.Error()
		if strings.Contains(msg, "malformed HTTP") || strings.Contains(msg, "unsupported protocol scheme") {
			return true
		}
	}

	return strings.Contains(err.Error(), "malformed HTTP")
}
