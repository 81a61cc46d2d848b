package errors

import "fmt"

var (
	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrUnknownEvent  = fmt.Errorf("unknown inbound event")
	ErrMalformedData = fmt.Errorf("malformed event data")
)
