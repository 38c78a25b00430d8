package train

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/IanYHWu/mnmt/internal/corpus"
	"github.com/IanYHWu/mnmt/internal/sampling"
	"github.com/IanYHWu/mnmt/internal/tensor"
)

// Seq2Seq is the model boundary: encode a source batch and decode against a
// shifted target input, producing logits [batch, seq, vocab].
type Seq2Seq interface {
	Forward(src, tgtIn *tensor.RawTensor) (*tensor.RawTensor, error)
}

// StepFunc consumes one (x, y) batch and returns its loss and accuracy.
// The training step additionally performs the parameter update; how is the
// implementation's business, the loop only aggregates metrics.
type StepFunc func(x, y *tensor.RawTensor) (loss, acc float32, err error)

// EvalStepFor builds a StepFunc that runs a forward pass and the masked
// metrics with no update, the validation-side counterpart of a training
// step.
func EvalStepFor(model Seq2Seq, padID int32) StepFunc {
	return func(x, y *tensor.RawTensor) (float32, float32, error) {
		yInp, yTar, err := ShiftTargets(y)
		if err != nil {
			return 0, 0, err
		}
		logits, err := model.Forward(x, yInp)
		if err != nil {
			return 0, 0, err
		}
		loss, err := MaskedLoss(logits, yTar, padID)
		if err != nil {
			return 0, 0, err
		}
		acc, err := MaskedAccuracy(logits, yTar, padID)
		if err != nil {
			return 0, 0, err
		}
		return loss, acc, nil
	}
}

// EpochResult holds the running-mean metrics of one epoch.
type EpochResult struct {
	Loss    float32
	Acc     float32
	ValLoss float32
	ValAcc  float32
}

// History collects per-epoch results over a run.
type History struct {
	Epochs []EpochResult
}

// Trainer drives the epoch loop. The stream is infinite, so StepsPerEpoch
// defines what an epoch means; validation iterates each pair's fixed loader
// to exhaustion.
type Trainer struct {
	Step     StepFunc
	EvalStep StepFunc // optional; nil skips validation

	Epochs        int
	StepsPerEpoch int
	LogEvery      int         // 0 disables progress lines
	Logger        *log.Logger // nil means log.Default()
}

// Run executes the configured number of epochs over the stream, optionally
// validating against the given per-pair sources after each epoch.
func (t *Trainer) Run(stream *sampling.Stream, val map[string]corpus.BatchSource) (*History, error) {
	if t.Step == nil {
		return nil, errors.New("train: Step is required")
	}
	if t.Epochs < 1 || t.StepsPerEpoch < 1 {
		return nil, fmt.Errorf("train: epochs (%d) and steps per epoch (%d) must be >= 1",
			t.Epochs, t.StepsPerEpoch)
	}

	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}

	history := &History{}
	for epoch := 0; epoch < t.Epochs; epoch++ {
		start := time.Now()

		result, err := t.runEpoch(stream, logger, start)
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}

		if t.EvalStep != nil && len(val) > 0 {
			result.ValLoss, result.ValAcc, err = t.runValidation(val)
			if err != nil {
				return nil, fmt.Errorf("epoch %d validation: %w", epoch, err)
			}
			logger.Printf("epoch %d loss %.4f acc %.4f val_loss %.4f val_acc %.4f in %.1fs",
				epoch, result.Loss, result.Acc, result.ValLoss, result.ValAcc,
				time.Since(start).Seconds())
		} else {
			logger.Printf("epoch %d loss %.4f acc %.4f in %.1fs",
				epoch, result.Loss, result.Acc, time.Since(start).Seconds())
		}

		history.Epochs = append(history.Epochs, result)
	}
	return history, nil
}

func (t *Trainer) runEpoch(stream *sampling.Stream, logger *log.Logger, start time.Time) (EpochResult, error) {
	var result EpochResult

	stream.Start()
	for i := 0; i < t.StepsPerEpoch; i++ {
		x, y, err := stream.Next()
		if err != nil {
			return result, err
		}

		loss, acc, err := t.Step(x, y)
		if err != nil {
			return result, fmt.Errorf("step %d: %w", i, err)
		}

		// Running means, numerically stable over long epochs.
		result.Loss += (loss - result.Loss) / float32(i+1)
		result.Acc += (acc - result.Acc) / float32(i+1)

		if t.LogEvery > 0 && i%t.LogEvery == 0 {
			logger.Printf("batch %d loss %.4f acc %.4f (%.3fs/batch)",
				i, result.Loss, result.Acc, time.Since(start).Seconds()/float64(i+1))
		}
	}
	return result, nil
}

func (t *Trainer) runValidation(val map[string]corpus.BatchSource) (loss, acc float32, err error) {
	var i int
	for key, src := range val {
		it := src.Iter()
		for {
			batch, err := it.Next()
			if errors.Is(err, corpus.ErrExhausted) {
				break
			}
			if err != nil {
				return 0, 0, fmt.Errorf("pair %s: %w", key, err)
			}

			x := batch.Seqs[batch.Pair.First]
			y := batch.Seqs[batch.Pair.Second]
			stepLoss, stepAcc, err := t.EvalStep(x, y)
			if err != nil {
				return 0, 0, fmt.Errorf("pair %s: %w", key, err)
			}

			loss += (stepLoss - loss) / float32(i+1)
			acc += (stepAcc - acc) / float32(i+1)
			i++
		}
	}
	return loss, acc, nil
}
