// Package train provides the supervised training loop for the MNMT
// pipeline: target shifting, padding-masked loss and accuracy over
// sequence logits, and an epoch loop over the infinite sampled stream.
//
// The model architecture and its optimizer live behind the Seq2Seq and
// step-function boundaries; this package only drives them.
package train

import (
	"fmt"
	"math"

	"github.com/IanYHWu/mnmt/internal/tensor"
)

// ShiftTargets splits a target batch [batch, seq] into decoder input
// y[:, :-1] and prediction target y[:, 1:], both [batch, seq-1].
func ShiftTargets(y *tensor.RawTensor) (inp, tar *tensor.RawTensor, err error) {
	shape := y.Shape()
	if len(shape) != 2 {
		return nil, nil, fmt.Errorf("targets must be 2D [batch, seq], got %s", shape)
	}
	batch, seq := shape[0], shape[1]
	if seq < 2 {
		return nil, nil, fmt.Errorf("sequence length must be >= 2 to shift, got %d", seq)
	}

	inp, err = tensor.NewRaw(tensor.Shape{batch, seq - 1}, tensor.Int32)
	if err != nil {
		return nil, nil, err
	}
	tar, err = tensor.NewRaw(tensor.Shape{batch, seq - 1}, tensor.Int32)
	if err != nil {
		return nil, nil, err
	}

	src := y.AsInt32()
	inpData := inp.AsInt32()
	tarData := tar.AsInt32()
	for b := 0; b < batch; b++ {
		copy(inpData[b*(seq-1):(b+1)*(seq-1)], src[b*seq:(b+1)*seq-1])
		copy(tarData[b*(seq-1):(b+1)*(seq-1)], src[b*seq+1:(b+1)*seq])
	}
	return inp, tar, nil
}

// MaskedLoss computes cross-entropy between logits [batch, seq, vocab] and
// targets [batch, seq], averaged over non-padding positions only. Positions
// where the target equals padID contribute nothing.
func MaskedLoss(logits, targets *tensor.RawTensor, padID int32) (float32, error) {
	batch, seq, vocab, err := checkShapes(logits, targets)
	if err != nil {
		return 0, err
	}

	logitsData := logits.AsFloat32()
	targetsData := targets.AsInt32()

	var total float64
	var count int
	for i := 0; i < batch*seq; i++ {
		target := targetsData[i]
		if target == padID {
			continue
		}
		if target < 0 || int(target) >= vocab {
			return 0, fmt.Errorf("target id %d out of vocab range [0, %d)", target, vocab)
		}
		logProbs := logSoftmax(logitsData[i*vocab : (i+1)*vocab])
		total += float64(-logProbs[target])
		count++
	}

	if count == 0 {
		return 0, fmt.Errorf("all target positions are padding")
	}
	return float32(total / float64(count)), nil
}

// MaskedAccuracy computes argmax accuracy over non-padding positions.
func MaskedAccuracy(logits, targets *tensor.RawTensor, padID int32) (float32, error) {
	batch, seq, vocab, err := checkShapes(logits, targets)
	if err != nil {
		return 0, err
	}

	logitsData := logits.AsFloat32()
	targetsData := targets.AsInt32()

	var correct, count int
	for i := 0; i < batch*seq; i++ {
		target := targetsData[i]
		if target == padID {
			continue
		}
		if argmax(logitsData[i*vocab:(i+1)*vocab]) == int(target) {
			correct++
		}
		count++
	}

	if count == 0 {
		return 0, fmt.Errorf("all target positions are padding")
	}
	return float32(correct) / float32(count), nil
}

func checkShapes(logits, targets *tensor.RawTensor) (batch, seq, vocab int, err error) {
	ls := logits.Shape()
	ts := targets.Shape()
	if len(ls) != 3 {
		return 0, 0, 0, fmt.Errorf("logits must be 3D [batch, seq, vocab], got %s", ls)
	}
	if len(ts) != 2 || ts[0] != ls[0] || ts[1] != ls[1] {
		return 0, 0, 0, fmt.Errorf("targets shape %s does not match logits %s", ts, ls)
	}
	return ls[0], ls[1], ls[2], nil
}

// logSoftmax computes log(softmax(x)) with the log-sum-exp trick for
// numerical stability.
func logSoftmax(logits []float32) []float32 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	var sumExp float64
	for _, v := range logits {
		sumExp += math.Exp(float64(v - maxLogit))
	}
	logSumExp := float32(math.Log(sumExp)) + maxLogit

	out := make([]float32, len(logits))
	for i, v := range logits {
		out[i] = v - logSumExp
	}
	return out
}

func argmax(xs []float32) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}
