package port

// EnvelopeError reports a response that arrived with {success:false}.
// The transport worked; the API refused. Read retries do not apply.
type EnvelopeError struct {
	Message string
}

func (e *EnvelopeError) Error() string {
	if e.Message == "" {
		return "request was not successful"
	}
	return e.Message
}
