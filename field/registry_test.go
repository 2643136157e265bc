package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	keyAttitude Key = iota
	keyRate
)

func testRegistry() (*Registry, error) {
	return NewRegistry(
		Spec{Key: keyAttitude, Type: Quaternion{}},
		Spec{Key: keyRate, Type: Vector{N: 3}},
	)
}

func TestNewRegistrySizes(t *testing.T) {
	assert := assert.New(t)

	reg, err := testRegistry()
	assert.NoError(err)
	assert.Equal(7, reg.StoredSize())    // 4 (quaternion) + 3 (rate)
	assert.Equal(6, reg.CovarianceSize()) // 3 + 3
}

func TestNewRegistryRejectsDuplicateKeys(t *testing.T) {
	assert := assert.New(t)

	_, err := NewRegistry(
		Spec{Key: keyAttitude, Type: Quaternion{}},
		Spec{Key: keyAttitude, Type: Vector{N: 3}},
	)
	assert.Error(err)
}

func TestStoredSliceOffsets(t *testing.T) {
	assert := assert.New(t)

	reg, err := testRegistry()
	assert.NoError(err)

	data := []float64{1, 0, 0, 0, 0.1, 0.2, 0.3}
	att, err := reg.StoredSlice(data, keyAttitude)
	assert.NoError(err)
	assert.Equal([]float64{1, 0, 0, 0}, att)

	rate, err := reg.StoredSlice(data, keyRate)
	assert.NoError(err)
	assert.Equal([]float64{0.1, 0.2, 0.3}, rate)
}

func TestStoredSliceUnknownKey(t *testing.T) {
	assert := assert.New(t)

	reg, err := testRegistry()
	assert.NoError(err)

	_, err = reg.StoredSlice(make([]float64, reg.StoredSize()), Key(99))
	assert.Error(err)
}

func TestTangentOffsets(t *testing.T) {
	assert := assert.New(t)

	reg, err := testRegistry()
	assert.NoError(err)

	off, err := reg.TangentOffset(keyRate)
	assert.NoError(err)
	assert.Equal(3, off)
}

func TestKeysPreservesRegistrationOrder(t *testing.T) {
	assert := assert.New(t)

	reg, err := testRegistry()
	assert.NoError(err)
	assert.Equal([]Key{keyAttitude, keyRate}, reg.Keys())
}
