package queue

// Stream entry fields. The payload is the notification document as received,
// the same JSON the Lambda runtime would deliver. notBefore holds the unix
// milliseconds before which a requeued entry must not be handled.
const (
	fieldPayload   = "payload"
	fieldAttempt   = "attempt"
	fieldNotBefore = "not_before"
)
