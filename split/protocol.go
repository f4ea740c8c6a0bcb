// Package split carries the messages exchanged between the party holding the
// scores and the party holding the labels during split training.
package split

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"gonum.org/v1/gonum/mat"
)

func init() {
	// Register types for gob encoding
	gob.Register(ScoresPayload{})
	gob.Register(CostPayload{})
}

// MessageType defines message types for the split cost exchange
type MessageType int

const (
	MsgScores MessageType = iota
	MsgCost
	MsgDone
	MsgError
)

// Message represents a message in the split protocol
type Message struct {
	Type    MessageType
	Payload interface{}
}

// ScoresPayload carries a batch of raw class scores (classes × samples).
type ScoresPayload struct {
	BatchID int
	Scores  []byte // gonum binary encoding
}

// CostPayload carries an encrypted cost. Slot 0 of the ciphertext holds the
// summed loss of Samples samples.
type CostPayload struct {
	BatchID    int
	Samples    int
	Ciphertext []byte // serialized ciphertext
}

// Protocol handles split training communication
type Protocol struct {
	encoder *gob.Encoder
	decoder *gob.Decoder
}

// NewProtocol creates a new protocol handler
func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	p := &Protocol{}
	if w != nil {
		p.encoder = gob.NewEncoder(w)
	}
	if r != nil {
		p.decoder = gob.NewDecoder(r)
	}
	return p
}

// Send sends a message
func (p *Protocol) Send(msg *Message) error {
	if p.encoder == nil {
		return fmt.Errorf("protocol has no writer")
	}
	return p.encoder.Encode(msg)
}

// Receive receives a message
func (p *Protocol) Receive() (*Message, error) {
	if p.decoder == nil {
		return nil, fmt.Errorf("protocol has no reader")
	}
	var msg Message
	if err := p.decoder.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendScores sends a batch of scores
func (p *Protocol) SendScores(batchID int, z *mat.Dense) error {
	b, err := z.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	return p.Send(&Message{
		Type:    MsgScores,
		Payload: ScoresPayload{BatchID: batchID, Scores: b},
	})
}

// SendCost sends an encrypted cost
func (p *Protocol) SendCost(batchID, samples int, ct *rlwe.Ciphertext) error {
	b, err := ct.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal ciphertext: %w", err)
	}
	return p.Send(&Message{
		Type: MsgCost,
		Payload: CostPayload{
			BatchID:    batchID,
			Samples:    samples,
			Ciphertext: b,
		},
	})
}

// SendDone signals completion
func (p *Protocol) SendDone() error {
	return p.Send(&Message{Type: MsgDone})
}

// SendError sends an error message
func (p *Protocol) SendError(err error) error {
	return p.Send(&Message{
		Type:    MsgError,
		Payload: err.Error(),
	})
}

func (p *Protocol) receive(want MessageType) (*Message, error) {
	msg, err := p.Receive()
	if err != nil {
		return nil, err
	}
	switch msg.Type {
	case MsgError:
		return nil, fmt.Errorf("remote error: %v", msg.Payload)
	case MsgDone:
		return nil, io.EOF
	case want:
		return msg, nil
	}
	return nil, fmt.Errorf("expected message %d, got %d", want, msg.Type)
}

// ReceiveScores receives a batch of scores. io.EOF means the peer is done.
func (p *Protocol) ReceiveScores() (int, *mat.Dense, error) {
	msg, err := p.receive(MsgScores)
	if err != nil {
		return 0, nil, err
	}
	payload, ok := msg.Payload.(ScoresPayload)
	if !ok {
		return 0, nil, fmt.Errorf("invalid scores payload type")
	}
	var z mat.Dense
	if err := z.UnmarshalBinary(payload.Scores); err != nil {
		return 0, nil, fmt.Errorf("unmarshal scores: %w", err)
	}
	return payload.BatchID, &z, nil
}

// ReceiveCost receives an encrypted cost. io.EOF means the peer is done.
func (p *Protocol) ReceiveCost() (*CostPayload, *rlwe.Ciphertext, error) {
	msg, err := p.receive(MsgCost)
	if err != nil {
		return nil, nil, err
	}
	payload, ok := msg.Payload.(CostPayload)
	if !ok {
		return nil, nil, fmt.Errorf("invalid cost payload type")
	}
	ct := new(rlwe.Ciphertext)
	if err := ct.UnmarshalBinary(payload.Ciphertext); err != nil {
		return nil, nil, fmt.Errorf("unmarshal ciphertext: %w", err)
	}
	return &payload, ct, nil
}

// ExchangeCost sends a batch of scores and waits for its encrypted cost.
func (p *Protocol) ExchangeCost(batchID int, z *mat.Dense) (*CostPayload, *rlwe.Ciphertext, error) {
	if err := p.SendScores(batchID, z); err != nil {
		return nil, nil, err
	}
	payload, ct, err := p.ReceiveCost()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("batch %d: peer closed before replying", batchID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("batch %d: %w", batchID, err)
	}
	if payload.BatchID != batchID {
		return nil, nil, fmt.Errorf("got cost of batch %d, expected batch %d", payload.BatchID, batchID)
	}
	return payload, ct, nil
}
