package chain

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"
)

const wordLen = 32

// EventTopic returns the topic-0 hash for a canonical event signature,
// e.g. "PlayerRetired(uint32,address,bool)".
func EventTopic(signature string) Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(signature))
	return Hash(encodeHex(hasher.Sum(nil)))
}

// topicWord decodes an indexed topic into its raw 32 bytes.
func topicWord(lg Log, index int) ([]byte, error) {
	if index >= len(lg.Topics) {
		return nil, fmt.Errorf("log has %d topics, want index %d", len(lg.Topics), index)
	}
	return lg.Topics[index].Bytes()
}

// topicUint64 decodes an indexed unsigned integer topic.
func topicUint64(lg Log, index int) (uint64, error) {
	raw, err := topicWord(lg, index)
	if err != nil {
		return 0, err
	}
	value := new(big.Int).SetBytes(raw)
	if !value.IsUint64() {
		return 0, fmt.Errorf("topic %d overflows uint64", index)
	}
	return value.Uint64(), nil
}

// topicAddress decodes an indexed address topic (left-padded to 32 bytes).
func topicAddress(lg Log, index int) (Address, error) {
	raw, err := topicWord(lg, index)
	if err != nil {
		return "", err
	}
	return Address(encodeHex(raw[wordLen-addressByteLen:])), nil
}

// wordReader walks the non-indexed data section of a log word by word.
// Decoding errors are sticky: once a read fails, subsequent reads return
// zero values and err() reports the first failure.
type wordReader struct {
	data    []byte
	pos     int
	failure error
}

func newWordReader(data []byte) *wordReader {
	return &wordReader{data: data}
}

func (r *wordReader) err() error {
	return r.failure
}

func (r *wordReader) fail(err error) {
	if r.failure == nil {
		r.failure = err
	}
}

func (r *wordReader) word() []byte {
	if r.failure != nil {
		return nil
	}
	if r.pos+wordLen > len(r.data) {
		r.fail(fmt.Errorf("log data truncated at word %d (%d bytes)", r.pos/wordLen, len(r.data)))
		return nil
	}
	word := r.data[r.pos : r.pos+wordLen]
	r.pos += wordLen
	return word
}

func (r *wordReader) big() *big.Int {
	word := r.word()
	if word == nil {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(word)
}

func (r *wordReader) uint64() uint64 {
	value := r.big()
	if r.failure != nil {
		return 0
	}
	if !value.IsUint64() {
		r.fail(fmt.Errorf("word at %d overflows uint64", r.pos-wordLen))
		return 0
	}
	return value.Uint64()
}

func (r *wordReader) uint32() uint32 {
	value := r.uint64()
	if value > 1<<32-1 {
		r.fail(fmt.Errorf("word at %d overflows uint32", r.pos-wordLen))
		return 0
	}
	return uint32(value)
}

func (r *wordReader) uint16() uint16 {
	value := r.uint64()
	if value > 1<<16-1 {
		r.fail(fmt.Errorf("word at %d overflows uint16", r.pos-wordLen))
		return 0
	}
	return uint16(value)
}

func (r *wordReader) uint8() uint8 {
	value := r.uint64()
	if value > 1<<8-1 {
		r.fail(fmt.Errorf("word at %d overflows uint8", r.pos-wordLen))
		return 0
	}
	return uint8(value)
}

func (r *wordReader) bool() bool {
	return r.uint64() != 0
}

func (r *wordReader) address() Address {
	word := r.word()
	if word == nil {
		return ""
	}
	return Address(encodeHex(word[wordLen-addressByteLen:]))
}

// bytes reads a dynamic `bytes` argument: an offset word pointing at a
// length-prefixed, word-padded byte run elsewhere in the data section.
func (r *wordReader) bytes() []byte {
	offset := r.uint64()
	if r.failure != nil {
		return nil
	}
	if offset+wordLen > uint64(len(r.data)) {
		r.fail(fmt.Errorf("bytes offset %d outside log data (%d bytes)", offset, len(r.data)))
		return nil
	}
	length := new(big.Int).SetBytes(r.data[offset : offset+wordLen])
	if !length.IsUint64() {
		r.fail(fmt.Errorf("bytes length at offset %d overflows uint64", offset))
		return nil
	}
	start := offset + wordLen
	end := start + length.Uint64()
	if end > uint64(len(r.data)) {
		r.fail(fmt.Errorf("bytes run [%d:%d] outside log data (%d bytes)", start, end, len(r.data)))
		return nil
	}
	out := make([]byte, length.Uint64())
	copy(out, r.data[start:end])
	return out
}
