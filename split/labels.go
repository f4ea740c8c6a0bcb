package split

import (
	"fmt"
	"io"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"gonum.org/v1/gonum/mat"

	"xent/core/ckkswrapper"
	"xent/nn"
)

// LabelHolder is the party that owns the labels. It answers every batch of
// scores with the encrypted sum of that batch's losses.
type LabelHolder struct {
	HE     *ckkswrapper.HeContext
	Loss   nn.CrossEntropyLoss
	Labels func(batchID int) (nn.Labels, error)
}

// Serve answers score batches until the peer sends done. Per-batch failures
// are reported to the peer and serving continues; transport errors end it.
func (h *LabelHolder) Serve(p *Protocol) error {
	for {
		id, z, err := p.ReceiveScores()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		ct, n, err := h.cost(id, z)
		if err != nil {
			if sendErr := p.SendError(err); sendErr != nil {
				return sendErr
			}
			continue
		}
		if err := p.SendCost(id, n, ct); err != nil {
			return err
		}
	}
}

func (h *LabelHolder) cost(batchID int, z *mat.Dense) (*rlwe.Ciphertext, int, error) {
	y, err := h.Labels(batchID)
	if err != nil {
		return nil, 0, fmt.Errorf("batch %d: %w", batchID, err)
	}
	l, err := h.Loss.Loss(z, y)
	if err != nil {
		return nil, 0, fmt.Errorf("batch %d: %w", batchID, err)
	}
	ct, err := h.HE.EncryptedCost(l)
	if err != nil {
		return nil, 0, fmt.Errorf("batch %d: %w", batchID, err)
	}
	return ct, len(y), nil
}
