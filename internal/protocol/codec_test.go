package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFrame(body []byte) []byte {
	b := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(b, uint32(len(body)))
	copy(b[4:], body)
	return b
}

func TestEncodeDecode_Sequence(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, 0)

	in := []*Message{
		{Type: Register, Username: "amy", Email: "a@x.com", Password: "pw1"},
		{Type: Login, Success: true, User: &User{ID: 7, Username: "amy", Email: "a@x.com"}},
		{Type: Search, Success: true, Plants: []Plant{{ID: 1, CommonName: "Fig", ScientificName: "Ficus"}}},
	}
	for _, m := range in {
		require.NoError(t, enc.Encode(m))
	}

	dec := NewDecoder(&buf, 0)
	for _, want := range in {
		got, err := dec.Decode()
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
		}
	}

	_, err := dec.Decode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEncode_EmptyListsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, 0)

	require.NoError(t, enc.Encode(&Message{Type: Search, Success: true, Plants: []Plant{}}))
	require.NoError(t, enc.Encode(&Message{Type: GetLibrary, Success: true, Library: []LibraryEntry{}}))

	b := buf.Bytes()
	n := binary.BigEndian.Uint32(b)
	assert.Contains(t, string(b[4:4+n]), `"plants":[]`)
	assert.Contains(t, string(b[8+n:]), `"library":[]`)
}

func TestDecode_FrameTooLarge(t *testing.T) {
	body := []byte(`{"type":"LOGIN","username":"someone-long"}`)
	dec := NewDecoder(bytes.NewReader(rawFrame(body)), 8)

	_, err := dec.Decode()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "hello"},
		{"missing type", `{"username":"amy"}`},
		{"wrong field type", `{"type":"LOGIN","plant_id":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := NewDecoder(bytes.NewReader(rawFrame([]byte(tt.body))), 0)
			_, err := dec.Decode()
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecode_UnknownTypeIsNotMalformed(t *testing.T) {
	dec := NewDecoder(bytes.NewReader(rawFrame([]byte(`{"type":"WATER_EVERYTHING"}`))), 0)

	msg, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, MessageType("WATER_EVERYTHING"), msg.Type)
	assert.False(t, msg.Type.Valid())
}

func TestDecode_TruncatedFrame(t *testing.T) {
	full := rawFrame([]byte(`{"type":"LOGIN"}`))

	_, err := NewDecoder(bytes.NewReader(full[:len(full)-3]), 0).Decode()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = NewDecoder(bytes.NewReader(full[:2]), 0).Decode()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestEncode_TooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := NewEncoder(&buf, 10).Encode(&Message{Type: Search, Search: "a very long search text"})
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Zero(t, buf.Len())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestEncode_WriteError(t *testing.T) {
	err := NewEncoder(failWriter{}, 0).Encode(OK(Login))
	assert.EqualError(t, err, "closed")
}

func TestAllTypes(t *testing.T) {
	all := AllTypes()
	assert.Len(t, all, 16)

	seen := map[MessageType]bool{}
	for _, mt := range all {
		assert.True(t, mt.Valid())
		assert.False(t, seen[mt], "duplicate %s", mt)
		seen[mt] = true
	}

	all[0] = "MUTATED"
	assert.Equal(t, Login, AllTypes()[0])
}

func TestFail(t *testing.T) {
	m := Fail(Login, CodeUnauthorized, "bad credentials")
	assert.False(t, m.Success)
	assert.Equal(t, CodeUnauthorized, m.Error)
	assert.Equal(t, Login, m.Type)
}
