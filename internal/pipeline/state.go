package pipeline

// State is a step of request processing
type State int

const (
	// Received means the request has arrived and its body is being read
	Received State = iota
	// Verifying checks the body signature
	Verifying
	// Decoding turns the body into a record
	Decoding
	// Matching runs the rule engine
	Matching
	// Forwarding calls the matched rule's destination
	Forwarding
	// Completed means an upstream response is being relayed
	Completed
	// Failed means the request ended with a proxy-generated error
	Failed
)

func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case Verifying:
		return "verifying"
	case Decoding:
		return "decoding"
	case Matching:
		return "matching"
	case Forwarding:
		return "forwarding"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}
