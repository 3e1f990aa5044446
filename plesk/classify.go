package plesk

// Classify turns an error status into a *RemoteError.  Records are checked in order and the first
// failing one is reported, later records are not looked at.  A record without status is a success.
func Classify(o Outcome) (Outcome, error) {
	for _, r := range o.results {
		if r.IsError() {
			return o, r.RemoteError()
		}
	}
	return o, nil
}
