package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is a dense row-major tensor backed by a byte buffer.
//
// The pipeline uses it for two things: Int32 token-id batches with shape
// [batch, max_len] and Float32 logits with shape [batch, seq, vocab]. Typed
// access goes through the As* views, which alias the underlying buffer.
type RawTensor struct {
	data  []byte
	shape Shape
	dtype DataType
}

// NewRaw creates a zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:  make([]byte, shape.NumElements()*dtype.Size()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromInt32 creates an Int32 tensor initialized from data.
// The data length must match the shape's element count.
func FromInt32(data []int32, shape Shape) (*RawTensor, error) {
	rt, err := NewRaw(shape, Int32)
	if err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %s (%d elements)",
			len(data), shape, shape.NumElements())
	}
	copy(rt.AsInt32(), data)
	return rt, nil
}

// FromFloat32 creates a Float32 tensor initialized from data.
// The data length must match the shape's element count.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	rt, err := NewRaw(shape, Float32)
	if err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %s (%d elements)",
			len(data), shape, shape.NumElements())
	}
	copy(rt.AsFloat32(), data)
	return rt, nil
}

// Shape returns the tensor's shape. Callers must not modify it.
func (rt *RawTensor) Shape() Shape {
	return rt.shape
}

// DType returns the tensor's data type.
func (rt *RawTensor) DType() DataType {
	return rt.dtype
}

// NumElements returns the total element count.
func (rt *RawTensor) NumElements() int {
	return rt.shape.NumElements()
}

// AsFloat32 returns the buffer viewed as []float32.
// Panics if the tensor is not Float32.
func (rt *RawTensor) AsFloat32() []float32 {
	rt.mustBe(Float32)
	return unsafe.Slice((*float32)(unsafe.Pointer(&rt.data[0])), rt.NumElements())
}

// AsInt32 returns the buffer viewed as []int32.
// Panics if the tensor is not Int32.
func (rt *RawTensor) AsInt32() []int32 {
	rt.mustBe(Int32)
	return unsafe.Slice((*int32)(unsafe.Pointer(&rt.data[0])), rt.NumElements())
}

// AsInt64 returns the buffer viewed as []int64.
// Panics if the tensor is not Int64.
func (rt *RawTensor) AsInt64() []int64 {
	rt.mustBe(Int64)
	return unsafe.Slice((*int64)(unsafe.Pointer(&rt.data[0])), rt.NumElements())
}

// Clone returns a deep copy of the tensor.
func (rt *RawTensor) Clone() *RawTensor {
	clone := &RawTensor{
		data:  make([]byte, len(rt.data)),
		shape: rt.shape.Clone(),
		dtype: rt.dtype,
	}
	copy(clone.data, rt.data)
	return clone
}

// String returns a short description like "RawTensor(int32, [32, 40])".
func (rt *RawTensor) String() string {
	return fmt.Sprintf("RawTensor(%s, %s)", rt.dtype, rt.shape)
}

func (rt *RawTensor) mustBe(dt DataType) {
	if rt.dtype != dt {
		panic(fmt.Sprintf("tensor is %s, not %s", rt.dtype, dt))
	}
}
