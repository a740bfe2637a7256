package wallet

import "fmt"

type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

var statusNames = map[Status]string{
	StatusDisconnected: "disconnected",
	StatusConnecting:   "connecting",
	StatusConnected:    "connected",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown wallet status %q", text)
}

// Kind classifies a session descriptor.
type Kind int

const (
	KindProviderAbsent Kind = iota + 1
	KindUserRejected
	KindRequestFailed
	// KindDisconnected is informational, not a failure.
	KindDisconnected
)

var kindNames = map[Kind]string{
	KindProviderAbsent: "provider_absent",
	KindUserRejected:   "user_rejected",
	KindRequestFailed:  "request_failed",
	KindDisconnected:   "disconnected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown descriptor kind %q", text)
}

// Descriptor is the last error or notice shown next to the wallet panel.
type Descriptor struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (d *Descriptor) String() string {
	if d == nil {
		return ""
	}
	return d.Kind.String() + ": " + d.Message
}

type connectionState struct {
	account    string
	chainID    string
	connecting bool
	lastError  *Descriptor
}

func (s *connectionState) status() Status {
	switch {
	case s.connecting:
		return StatusConnecting
	case s.account != "":
		return StatusConnected
	default:
		return StatusDisconnected
	}
}

// Snapshot is an immutable copy of the session state. Version grows with
// every mutation so consumers can drop out of order deliveries.
type Snapshot struct {
	Account    string      `json:"account,omitempty"`
	ChainID    string      `json:"chainId,omitempty"`
	ChainName  string      `json:"chainName,omitempty"`
	Connecting bool        `json:"connecting"`
	LastError  *Descriptor `json:"lastError,omitempty"`
	Status     Status      `json:"status"`
	Provider   string      `json:"provider,omitempty"`
	Version    uint64      `json:"version"`
}

func (s Snapshot) Connected() bool {
	return s.Status == StatusConnected
}
