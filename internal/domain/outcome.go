package domain

import "time"

// ErrorKind classifies a transport level probe failure.
type ErrorKind string

const (
	ErrorTimeout    ErrorKind = "timeout"
	ErrorConnection ErrorKind = "connection"
	ErrorTLS        ErrorKind = "tls"
	ErrorProtocol   ErrorKind = "protocol"
	ErrorOther      ErrorKind = "other"
)

var ErrorKinds = []ErrorKind{ErrorTimeout, ErrorConnection, ErrorTLS, ErrorProtocol, ErrorOther}

// ProbeOutcome is the raw result of one probe. It is either a response
// (Failure is empty) or a transport failure (Failure is set, StatusCode and
// Body are zero).
type ProbeOutcome struct {
	Elapsed    time.Duration
	StatusCode int
	Body       []byte
	Failure    ErrorKind
}

func ResponseOutcome(statusCode int, body []byte, elapsed time.Duration) ProbeOutcome {
	return ProbeOutcome{
		Elapsed:    elapsed,
		StatusCode: statusCode,
		Body:       body,
	}
}

func FailureOutcome(kind ErrorKind, elapsed time.Duration) ProbeOutcome {
	if kind == "" {
		kind = ErrorOther
	}

	return ProbeOutcome{
		Elapsed: elapsed,
		Failure: kind,
	}
}

func (o ProbeOutcome) IsTransportFailure() bool {
	return o.Failure != ""
}
