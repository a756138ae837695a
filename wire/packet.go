// Package wire defines the on-the-wire packet format shared by routers
// and hosts and the sole boundary where raw UDP bytes cross into the
// typed Packet form. Every other package operates on Packet values,
// never on raw JSON.
package wire

import (
	"github.com/pkg/errors"

	jsoniter "github.com/json-iterator/go"
)

// json is a drop-in, faster encoding/json replacement used on this
// codec's hot path: every LSA flood, data forward, and ACK round-trips
// through Marshal/Unmarshal below.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxDatagramSize is the largest a serialized packet may be; the whole
// JSON object must fit in a single UDP datagram.
const MaxDatagramSize = 1024

// Kind discriminates the three packet variants carried over the wire.
type Kind string

const (
	KindLSA  Kind = "lsa"
	KindData Kind = "data"
	KindAck  Kind = "ack"
)

// Payload carries the kind-specific body of a packet: Links for an lsa,
// Content for a data packet. An ack has no payload.
type Payload struct {
	Links   map[string]int `json:"links,omitempty"`
	Content string         `json:"content,omitempty"`
}

// Packet is the discriminated record carried over the wire. Fields
// that don't apply to a given Kind are left at their zero value and
// omitted from the wire representation where that matters (lsa and ack
// carry no ttl; lsa and ack payload fields differ; only lsa's
// destination is explicitly null).
type Packet struct {
	Type        Kind     `json:"type"`
	Sequence    int64    `json:"sequence"`
	Source      string   `json:"source"`
	Destination *string  `json:"destination"`
	TTL         int      `json:"ttl,omitempty"`
	Timestamp   int64    `json:"timestamp,omitempty"`
	Payload     Payload  `json:"payload,omitempty"`
}

// wireAlias mirrors Packet but additionally accepts the legacy
// "router_id" key as a source alias on decode: some peers name the LSA
// originator field router_id, others source, so this codec accepts
// either for wire compatibility.
type wireAlias struct {
	Type        Kind     `json:"type"`
	Sequence    int64    `json:"sequence"`
	Source      string   `json:"source"`
	RouterID    string   `json:"router_id"`
	Destination *string  `json:"destination"`
	TTL         int      `json:"ttl,omitempty"`
	Timestamp   int64    `json:"timestamp,omitempty"`
	Payload     Payload  `json:"payload,omitempty"`
}

// Dest returns the destination as a plain string and whether it was
// present (non-null). LSAs have no destination.
func (p *Packet) Dest() (string, bool) {
	if p.Destination == nil {
		return "", false
	}
	return *p.Destination, true
}

// SetDest sets the destination field to a concrete value.
func (p *Packet) SetDest(dest string) {
	p.Destination = &dest
}

// Marshal encodes a packet to its wire form and enforces the datagram
// size ceiling up front, so an oversized packet is rejected at
// construction time rather than failing a later sendto.
func Marshal(p *Packet) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "encode packet")
	}
	if len(data) > MaxDatagramSize {
		return nil, errors.Errorf("encoded packet is %d bytes, exceeds %d byte datagram limit", len(data), MaxDatagramSize)
	}
	return data, nil
}

// Unmarshal decodes a wire datagram into a Packet and validates that
// the fields required for its Kind are present, rejecting packets
// missing a required field or carrying an unrecognized type.
func Unmarshal(data []byte) (*Packet, error) {
	var alias wireAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return nil, errors.Wrap(err, "decode packet")
	}

	source := alias.Source
	if source == "" {
		source = alias.RouterID
	}

	p := &Packet{
		Type:        alias.Type,
		Sequence:    alias.Sequence,
		Source:      source,
		Destination: alias.Destination,
		TTL:         alias.TTL,
		Timestamp:   alias.Timestamp,
		Payload:     alias.Payload,
	}

	if err := validate(p); err != nil {
		return nil, err
	}

	return p, nil
}

// validate checks that a decoded packet carries every field its Kind
// requires.
func validate(p *Packet) error {
	if p.Source == "" {
		return errors.New("missing required field: source")
	}

	switch p.Type {
	case KindLSA:
		if p.Payload.Links == nil {
			return errors.New("missing required field: payload.links")
		}
	case KindData:
		if p.Destination == nil || *p.Destination == "" {
			return errors.New("missing required field: destination")
		}
		if p.TTL <= 0 {
			return errors.New("missing required field: ttl")
		}
		if p.Payload.Content == "" {
			return errors.New("missing required field: payload.content")
		}
	case KindAck:
		if p.Destination == nil || *p.Destination == "" {
			return errors.New("missing required field: destination")
		}
		if p.Timestamp == 0 {
			return errors.New("missing required field: timestamp")
		}
	case "":
		return errors.New("missing required field: type")
	default:
		return errors.Errorf("unknown packet type: %q", p.Type)
	}

	return nil
}

// NewLSA constructs a well-formed LSA packet.
func NewLSA(source string, sequence int64, links map[string]int) *Packet {
	return &Packet{
		Type:        KindLSA,
		Sequence:    sequence,
		Source:      source,
		Destination: nil,
		Payload:     Payload{Links: links},
	}
}

// NewData constructs a well-formed data packet.
func NewData(source, destination string, sequence int64, ttl int, content string) *Packet {
	return &Packet{
		Type:        KindData,
		Sequence:    sequence,
		Source:      source,
		Destination: &destination,
		TTL:         ttl,
		Payload:     Payload{Content: content},
	}
}

// NewAck constructs a well-formed acknowledgment packet for the given
// sequence number, addressed back to the original sender.
func NewAck(source, destination string, sequence int64, timestamp int64) *Packet {
	return &Packet{
		Type:        KindAck,
		Sequence:    sequence,
		Source:      source,
		Destination: &destination,
		Timestamp:   timestamp,
	}
}
