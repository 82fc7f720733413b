package reader

import "testing"

func assert(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Fatal(msg)
	}
}

func TestReadU1U2U4(t *testing.T) {
	r := FromBytes([]byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x34})

	u4, err := r.ReadU4()
	assert(t, err == nil, "unexpected error reading u4")
	assert(t, u4 == 0xCAFEBABE, "magic did not decode correctly")

	u2, err := r.ReadU2()
	assert(t, err == nil, "unexpected error reading u2")
	assert(t, u2 == 0x0034, "u2 did not decode correctly")

	assert(t, r.Remaining() == 0, "expected buffer fully consumed")
}

func TestReadPastEndReturnsError(t *testing.T) {
	r := FromBytes([]byte{0x01})

	_, err := r.ReadU2()
	assert(t, err != nil, "expected error reading u2 past end of buffer")
}

func TestSeekAndSkip(t *testing.T) {
	r := FromBytes([]byte{1, 2, 3, 4, 5})

	assert(t, r.Seek(3) == nil, "seek within bounds should not fail")
	assert(t, r.Position() == 3, "position did not update after seek")

	assert(t, r.Seek(10) != nil, "seek past end of buffer should fail")

	assert(t, r.Seek(0) == nil, "seek back to start should not fail")
	assert(t, r.Skip(2) == nil, "skip within bounds should not fail")
	assert(t, r.Position() == 2, "position did not update after skip")

	assert(t, r.Skip(100) != nil, "skip past end of buffer should fail")
}

func TestReadU8BigEndian(t *testing.T) {
	r := FromBytes([]byte{0, 0, 0, 0, 0, 0, 0, 42})
	v, err := r.ReadU8()
	assert(t, err == nil, "unexpected error reading u8")
	assert(t, v == 42, "u8 did not decode as big-endian")
}
