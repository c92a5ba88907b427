package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestParsePath(t *testing.T) {
	ids, err := parsePath("3/1/4")
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 1, 4}, ids)

	_, err = parsePath("3/0/4")
	assert.Error(t, err, "field number 0 is never a valid path element")

	_, err = parsePath("3/x")
	assert.Error(t, err, "non-numeric path element")

	_, err = parsePath("")
	assert.Error(t, err, "empty path names no field at all")
}

func TestRunExtractsTopLevelField(t *testing.T) {
	data := []byte{0x08, 0x96, 0x01, 0x12, 0x05, 'h', 'e', 'l', 'l', 'o'}
	*path = "1"
	*raw = false

	var out bytes.Buffer
	err := run(bytes.NewReader(data), &out)
	require.NoError(t, err)
	assert.Equal(t, "varint 150\n", out.String())
}

func TestRunExtractsNestedField(t *testing.T) {
	// field 3 (length-delim, 2 bytes) containing field 1 (varint 42).
	data := []byte{0x1a, 0x02, 0x08, 0x2a}
	*path = "3/1"
	*raw = false

	var out bytes.Buffer
	err := run(bytes.NewReader(data), &out)
	require.NoError(t, err)
	assert.Equal(t, "varint 42\n", out.String())
}

func TestRunRawBytesSkipsQuoting(t *testing.T) {
	data := []byte{0x0a, 0x05, 'h', 'e', 'l', 'l', 'o'}
	*path = "1"
	*raw = true
	defer func() { *raw = false }()

	var out bytes.Buffer
	err := run(bytes.NewReader(data), &out)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.String())
}

func TestRunNoMatchProducesNoOutput(t *testing.T) {
	data := []byte{0x08, 0x01}
	*path = "99"
	*raw = false

	var out bytes.Buffer
	err := run(bytes.NewReader(data), &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}
