// internal/sunspec/walker.go
package sunspec

import (
	"errors"
	"fmt"
	"strings"
)

// RegisterSource reads count contiguous holding registers starting at addr.
// It is the only capability the walker needs from the transport.
type RegisterSource interface {
	ReadWords(addr, count uint16) ([]uint16, error)
}

// Wire constants.
const (
	SignatureHi uint16 = 0x5375 // "Su"
	SignatureLo uint16 = 0x6e53 // "nS"

	// DefaultBaseAddress is where MATE3 exposes its SunSpec map.
	DefaultBaseAddress uint16 = 40000

	// MaxBlocks bounds one chain walk.
	MaxBlocks = 30

	manufacturerToken = "OUTBACK_POWER"
	manufacturerWords = 16
	headerWords       = 2
)

var (
	// ErrUnavailable wraps every transport failure.
	ErrUnavailable = errors.New("sunspec: registers unavailable")

	ErrNoSignature        = errors.New("sunspec: SunSpec signature not found")
	ErrNotOutback         = errors.New("sunspec: not an Outback Power device")
	ErrChainNotTerminated = errors.New("sunspec: block chain did not terminate")
	ErrAddressOverflow    = errors.New("sunspec: block address beyond register space")
)

// BlockHeader is the 2-word prefix of every block.
// Length excludes the header itself.
type BlockHeader struct {
	DID    uint16
	Length uint16
}

// Block is one step of a chain walk.
// Known is false when the registry has no schema for the DID.
type Block struct {
	Address uint16
	Header  BlockHeader
	Schema  BlockSchema
	Known   bool
}

// Name returns the schema name or UnknownName.
func (b Block) Name() string {
	if !b.Known {
		return UnknownName
	}
	return b.Schema.Name
}

// IsTerminator reports whether the block is the "End of SunSpec" marker.
func (b Block) IsTerminator() bool {
	return b.Header.DID == DIDEndOfSunSpec
}

// Walker drives SunSpec discovery against one register source.
// A Walker holds no state between calls; use one per connection.
type Walker struct {
	src       RegisterSource
	maxBlocks int
}

// NewWalker binds a walker to src.
func NewWalker(src RegisterSource) *Walker {
	return &Walker{src: src, maxBlocks: MaxBlocks}
}

func (w *Walker) read(addr, count uint16) ([]uint16, error) {
	words, err := w.src.ReadWords(addr, count)
	if err != nil {
		return nil, fmt.Errorf("%w: read %d@%d: %w", ErrUnavailable, count, addr, err)
	}
	if len(words) != int(count) {
		return nil, fmt.Errorf("%w: read %d@%d: got %d words", ErrUnavailable, count, addr, len(words))
	}
	return words, nil
}

// FindRoot verifies the SunSpec signature and the Outback manufacturer at
// base and returns the manufacturer block length stored at base+3.
func (w *Walker) FindRoot(base uint16) (uint16, error) {
	sig, err := w.read(base, 2)
	if err != nil {
		return 0, err
	}
	if sig[0] != SignatureHi || sig[1] != SignatureLo {
		return 0, fmt.Errorf("%w at %d: got 0x%04x 0x%04x", ErrNoSignature, base, sig[0], sig[1])
	}

	mfr, err := w.read(base+4, manufacturerWords)
	if err != nil {
		return 0, err
	}
	manufacturer := DecodeString(mfr, manufacturerWords*2)
	if !strings.Contains(strings.ToUpper(manufacturer), manufacturerToken) {
		return 0, fmt.Errorf("%w: detected %q", ErrNotOutback, manufacturer)
	}

	size, err := w.read(base+3, 1)
	if err != nil {
		return 0, err
	}
	return size[0], nil
}

// ChainStart returns the address of the first block after the common block.
func ChainStart(base, length uint16) (uint16, error) {
	next := uint32(base) + uint32(length) + 4
	if next > 0xFFFF {
		return 0, ErrAddressOverflow
	}
	return uint16(next), nil
}

// ReadBlockHeader reads the DID and length at addr.
func (w *Walker) ReadBlockHeader(addr uint16) (BlockHeader, error) {
	words, err := w.read(addr, headerWords)
	if err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{DID: words[0], Length: words[1]}, nil
}

// ReadBlock reads the whole block, header included, so that FieldRule
// offsets index it directly.
func (w *Walker) ReadBlock(b Block) ([]uint16, error) {
	count := uint32(b.Header.Length) + headerWords
	if uint32(b.Address)+count > 0x10000 || count > 0xFFFF {
		return nil, ErrAddressOverflow
	}
	return w.read(b.Address, uint16(count))
}

// Walk returns a lazy iterator over the block chain starting at start.
func (w *Walker) Walk(start uint16) *Iterator {
	return &Iterator{w: w, next: uint32(start)}
}

// Iterator yields one block per Next call.
//
//	it := w.Walk(start)
//	for it.Next() {
//		b := it.Block()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	w     *Walker
	next  uint32
	count int
	cur   Block
	done  bool
	err   error
}

// Next advances to the next block. It returns false once the terminator has
// been yielded, a header read failed, or the block bound was hit.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if it.count >= it.w.maxBlocks {
		it.stop(fmt.Errorf("%w after %d blocks", ErrChainNotTerminated, it.count))
		return false
	}
	if it.next > 0xFFFF {
		it.stop(ErrAddressOverflow)
		return false
	}

	addr := uint16(it.next)
	hdr, err := it.w.ReadBlockHeader(addr)
	if err != nil {
		it.stop(err)
		return false
	}

	schema, known := SchemaFor(hdr.DID)
	it.cur = Block{Address: addr, Header: hdr, Schema: schema, Known: known}
	it.count++

	if it.cur.IsTerminator() {
		// the terminator's length is never followed
		it.done = true
		return true
	}

	it.next = uint32(addr) + uint32(hdr.Length) + headerWords
	return true
}

func (it *Iterator) stop(err error) {
	it.done = true
	it.err = err
	it.cur = Block{}
}

// Block returns the current block.
func (it *Iterator) Block() Block { return it.cur }

// Err returns the reason the walk stopped early, or nil after a clean terminator.
func (it *Iterator) Err() error { return it.err }

// Count returns the number of headers read so far.
func (it *Iterator) Count() int { return it.count }
