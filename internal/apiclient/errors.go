package apiclient

import (
	"context"
	"errors"
	"net"
	"net/textproto"
)

// classify maps transport errors to the short operator-facing phrases stored
// in the ledger error columns.
func classify(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "request timed out"
	case isConnectionError(err):
		return "could not reach server"
	default:
		return err.Error()
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	return errors.As(err, &opErr) || errors.As(err, &dnsErr)
}

// partHeader builds the MIME header for one "files" part. Documents are sent
// as opaque bytes; the service sniffs the type itself.
func partHeader(filename string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		`form-data; name="files"; filename="`+escapeQuotes(filename)+`"`)
	h.Set("Content-Type", "application/octet-stream")
	return h
}

func escapeQuotes(s string) string {
	r := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			r = append(r, '\\')
		}
		r = append(r, s[i])
	}
	return string(r)
}
