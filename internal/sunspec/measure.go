// internal/sunspec/measure.go
package sunspec

// Measurements maps a field name to its scaled value. Order is not significant.
type Measurements map[string]float64

// DecodeMeasurements applies the registry's field rules for did to the words
// of one block (header included). Blocks without rules decode to an empty map.
func DecodeMeasurements(did uint16, words []uint16) Measurements {
	s, ok := SchemaFor(did)
	if !ok {
		return Measurements{}
	}
	return decodeFields(s.Fields, words)
}

// decodeFields never reads past the block: rules that fall outside words are
// skipped, which happens on firmware that reports a shorter block.
func decodeFields(rules []FieldRule, words []uint16) Measurements {
	out := make(Measurements, len(rules))

	for _, r := range rules {
		w := r.width()
		if r.Offset < 0 || r.Offset+w > len(words) {
			continue
		}
		out[r.Name] = decodeField(r, words[r.Offset:r.Offset+w])
	}

	return out
}

func decodeField(r FieldRule, span []uint16) float64 {
	var v float64

	switch r.Kind {
	case QuirkySigned:
		v = float64(DecodeSigned16(span[0]))
	case Signed:
		v = float64(DecodeInt(span, len(span)))
	default:
		v = float64(DecodeUint(span, len(span)))
	}

	return v * r.Scale
}
