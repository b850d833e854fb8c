// internal/sunspec/common.go
package sunspec

// CommonBlock is the SunSpec identification record at the root address.
type CommonBlock struct {
	SunSpecID     uint32 `json:"sunspec_id"`
	DID           uint16 `json:"did"`
	Length        uint16 `json:"length"`
	Manufacturer  string `json:"manufacturer"`
	Model         string `json:"model"`
	Options       string `json:"options"`
	Version       string `json:"version"`
	SerialNumber  string `json:"serial_number"`
	DeviceAddress uint16 `json:"device_address"`

	// Header of the block that follows the common block.
	NextDID    uint16 `json:"next_did"`
	NextLength uint16 `json:"next_length"`
}

// commonBlockWords covers the signature and common block (69 words) plus
// the header of the block that follows.
const commonBlockWords = 69 + 2

// field widths in words
var commonLayout = struct {
	id, did, length, manufacturer, model, options, version, serial, devAddr, nextDID, nextLen int
}{2, 1, 1, 16, 16, 8, 8, 16, 1, 1, 1}

// DecodeCommonBlock reads the common block at the SunSpec root and decodes it
// positionally.
func (w *Walker) DecodeCommonBlock(base uint16) (CommonBlock, error) {
	words, err := w.read(base, commonBlockWords)
	if err != nil {
		return CommonBlock{}, err
	}
	return decodeCommon(words), nil
}

func decodeCommon(words []uint16) CommonBlock {
	var cb CommonBlock
	l := commonLayout
	pos := 0
	take := func(n int) []uint16 {
		s := words[pos : pos+n]
		pos += n
		return s
	}

	cb.SunSpecID = uint32(DecodeUint(take(l.id), l.id))
	cb.DID = uint16(DecodeUint(take(l.did), l.did))
	cb.Length = uint16(DecodeUint(take(l.length), l.length))
	cb.Manufacturer = DecodeString(take(l.manufacturer), l.manufacturer*2)
	cb.Model = DecodeString(take(l.model), l.model*2)
	cb.Options = DecodeString(take(l.options), l.options*2)
	cb.Version = DecodeString(take(l.version), l.version*2)
	cb.SerialNumber = DecodeString(take(l.serial), l.serial*2)
	cb.DeviceAddress = uint16(DecodeUint(take(l.devAddr), l.devAddr))
	cb.NextDID = uint16(DecodeUint(take(l.nextDID), l.nextDID))
	cb.NextLength = uint16(DecodeUint(take(l.nextLen), l.nextLen))

	return cb
}
