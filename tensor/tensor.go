// Package tensor provides the public API for the tensor containers used by
// the MNMT data pipeline.
//
// Batches flow through the pipeline as Int32 RawTensors of shape
// [batch, max_len]; models produce Float32 logits of shape
// [batch, seq, vocab].
//
// Example:
//
//	batch, err := tensor.FromInt32(ids, tensor.Shape{32, 40})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(batch.Shape()) // [32, 40]
package tensor

import (
	"github.com/IanYHWu/mnmt/internal/tensor"
)

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{32, 40} is a batch of 32 sequences of length 40.
type Shape = tensor.Shape

// RawTensor is a dense row-major tensor backed by a byte buffer, with typed
// slice views for access.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromInt32 creates an Int32 tensor initialized from data.
func FromInt32(data []int32, shape Shape) (*RawTensor, error) {
	return tensor.FromInt32(data, shape)
}

// FromFloat32 creates a Float32 tensor initialized from data.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape)
}
