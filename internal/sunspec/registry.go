// internal/sunspec/registry.go
package sunspec

// Device identifiers (DIDs) found in an Outback MATE3 SunSpec map.
// Layouts follow the Outback AXS application note.
const (
	DIDSunSpecInverterSinglePhase uint16 = 101
	DIDSunSpecInverterSplitPhase  uint16 = 102
	DIDSunSpecInverterThreePhase  uint16 = 103

	DIDOutback                 uint16 = 64110
	DIDChargeController        uint16 = 64111
	DIDChargeControllerConfig  uint16 = 64112
	DIDFXInverterRealTime      uint16 = 64113
	DIDFXInverterConfig        uint16 = 64114
	DIDSplitPhaseRadian        uint16 = 64115
	DIDRadianInverterConfig    uint16 = 64116
	DIDSinglePhaseRadian       uint16 = 64117
	DIDFlexNetDCRealTime       uint16 = 64118
	DIDFlexNetDCConfig         uint16 = 64119
	DIDOutbackSystemControl    uint16 = 64120
	DIDOpticsREStatistics      uint16 = 64255
	DIDEndOfSunSpec            uint16 = 65535
)

// UnknownName is reported for DIDs the registry does not know.
const UnknownName = "unknown"

// FieldKind selects how a field's raw word(s) are interpreted.
type FieldKind uint8

const (
	Unsigned     FieldKind = iota // plain unsigned read
	QuirkySigned                  // Outback firmware negative encoding, see DecodeSigned16
	Signed                        // canonical two's complement
)

// FieldRule maps one register span of a block to a named, scaled measurement.
// Offset counts words from the block base, so the DID sits at 0 and the
// length at 1.
type FieldRule struct {
	Name   string
	Offset int
	Width  int // words; 0 means 1
	Kind   FieldKind
	Scale  float64
}

func (r FieldRule) width() int {
	if r.Width <= 0 {
		return 1
	}
	return r.Width
}

// BlockSchema describes one block type.
// Schemas without Fields are known by name only.
type BlockSchema struct {
	DID    uint16
	Name   string
	Fields []FieldRule
}

// ---- field tables ----

// Radian split-phase and single-phase blocks share the per-leg layout; the
// split-phase block carries a second leg before the battery fields.
var singlePhaseRadianFields = []FieldRule{
	{Name: "port", Offset: 2, Kind: Unsigned, Scale: 1},
	{Name: "inverter_output_current", Offset: 7, Kind: Unsigned, Scale: 1},
	{Name: "charger_current", Offset: 8, Kind: Unsigned, Scale: 1},
	{Name: "input_current", Offset: 9, Kind: Unsigned, Scale: 1},
	{Name: "ac_output_voltage", Offset: 13, Kind: Unsigned, Scale: 1},
	{Name: "battery_voltage", Offset: 17, Kind: Unsigned, Scale: 0.1},
	{Name: "battery_target_voltage", Offset: 18, Kind: Unsigned, Scale: 0.1},
	{Name: "battery_temperature", Offset: 27, Kind: QuirkySigned, Scale: 1},
	{Name: "ac_input_voltage", Offset: 30, Kind: Unsigned, Scale: 1},
	{Name: "ac_use", Offset: 31, Kind: Unsigned, Scale: 1},
}

var splitPhaseRadianFields = []FieldRule{
	{Name: "port", Offset: 2, Kind: Unsigned, Scale: 1},
	{Name: "l1_inverter_output_current", Offset: 7, Kind: Unsigned, Scale: 1},
	{Name: "l1_charger_current", Offset: 8, Kind: Unsigned, Scale: 1},
	{Name: "l1_input_current", Offset: 9, Kind: Unsigned, Scale: 1},
	{Name: "l1_ac_output_voltage", Offset: 13, Kind: Unsigned, Scale: 1},
	{Name: "l2_inverter_output_current", Offset: 14, Kind: Unsigned, Scale: 1},
	{Name: "l2_charger_current", Offset: 15, Kind: Unsigned, Scale: 1},
	{Name: "l2_input_current", Offset: 16, Kind: Unsigned, Scale: 1},
	{Name: "l2_ac_output_voltage", Offset: 20, Kind: Unsigned, Scale: 1},
	{Name: "battery_voltage", Offset: 24, Kind: Unsigned, Scale: 0.1},
	{Name: "battery_target_voltage", Offset: 25, Kind: Unsigned, Scale: 0.1},
	{Name: "battery_temperature", Offset: 34, Kind: QuirkySigned, Scale: 1},
}

var fxInverterFields = []FieldRule{
	{Name: "port", Offset: 2, Kind: Unsigned, Scale: 1},
	{Name: "inverter_output_current", Offset: 7, Kind: Unsigned, Scale: 1},
	{Name: "charger_current", Offset: 8, Kind: Unsigned, Scale: 1},
	{Name: "input_current", Offset: 9, Kind: Unsigned, Scale: 1},
	{Name: "ac_input_voltage", Offset: 10, Kind: Unsigned, Scale: 1},
	{Name: "ac_output_voltage", Offset: 11, Kind: Unsigned, Scale: 1},
	{Name: "sell_current", Offset: 12, Kind: Unsigned, Scale: 1},
	{Name: "operating_mode", Offset: 13, Kind: Unsigned, Scale: 1},
	{Name: "error_flags", Offset: 14, Kind: Unsigned, Scale: 1},
	{Name: "battery_voltage", Offset: 16, Kind: Unsigned, Scale: 0.1},
	{Name: "battery_target_voltage", Offset: 17, Kind: Unsigned, Scale: 0.1},
	{Name: "battery_temperature", Offset: 20, Kind: QuirkySigned, Scale: 1},
}

var chargeControllerFields = []FieldRule{
	{Name: "port", Offset: 2, Kind: Unsigned, Scale: 1},
	{Name: "voltage_sf", Offset: 3, Kind: Signed, Scale: 1},
	{Name: "current_sf", Offset: 4, Kind: Signed, Scale: 1},
	{Name: "battery_voltage", Offset: 8, Kind: Unsigned, Scale: 0.1},
	{Name: "array_voltage", Offset: 9, Kind: Unsigned, Scale: 0.1},
	{Name: "battery_current", Offset: 10, Kind: Unsigned, Scale: 0.1},
	{Name: "array_current", Offset: 11, Kind: Unsigned, Scale: 1},
	{Name: "charger_state", Offset: 12, Kind: Unsigned, Scale: 1},
	{Name: "watts", Offset: 13, Kind: Unsigned, Scale: 1},
	{Name: "todays_min_battery_voltage", Offset: 14, Kind: Unsigned, Scale: 0.1},
	{Name: "todays_max_battery_voltage", Offset: 15, Kind: Unsigned, Scale: 0.1},
	{Name: "voc", Offset: 16, Kind: Unsigned, Scale: 0.1},
	{Name: "todays_peak_voc", Offset: 17, Kind: Unsigned, Scale: 0.1},
	{Name: "todays_kwh", Offset: 18, Kind: Unsigned, Scale: 0.1},
	{Name: "todays_ah", Offset: 19, Kind: Unsigned, Scale: 1},
}

var flexNetDCFields = []FieldRule{
	{Name: "port", Offset: 2, Kind: Unsigned, Scale: 1},
	{Name: "shunt_a_current", Offset: 8, Kind: QuirkySigned, Scale: 0.1},
	{Name: "shunt_b_current", Offset: 9, Kind: QuirkySigned, Scale: 0.1},
	{Name: "shunt_c_current", Offset: 10, Kind: QuirkySigned, Scale: 0.1},
	{Name: "battery_voltage", Offset: 11, Kind: Unsigned, Scale: 0.1},
	{Name: "battery_current", Offset: 12, Kind: QuirkySigned, Scale: 0.1},
	{Name: "battery_temperature", Offset: 13, Kind: QuirkySigned, Scale: 1},
	{Name: "status_flags", Offset: 14, Kind: Unsigned, Scale: 1},
}

// ---- registry ----

var registry = map[uint16]BlockSchema{
	DIDOutback:                    {DID: DIDOutback, Name: "Outback block"},
	DIDChargeController:           {DID: DIDChargeController, Name: "Charge Controller Block", Fields: chargeControllerFields},
	DIDChargeControllerConfig:     {DID: DIDChargeControllerConfig, Name: "Charge Controller Configuration block"},
	DIDFXInverterRealTime:         {DID: DIDFXInverterRealTime, Name: "FX Inverter Real Time Block", Fields: fxInverterFields},
	DIDFXInverterConfig:           {DID: DIDFXInverterConfig, Name: "FX Inverter Configuration Block"},
	DIDSplitPhaseRadian:           {DID: DIDSplitPhaseRadian, Name: "Split Phase Radian Inverter Real Time Block", Fields: splitPhaseRadianFields},
	DIDRadianInverterConfig:       {DID: DIDRadianInverterConfig, Name: "Radian Inverter Configuration Block"},
	DIDSinglePhaseRadian:          {DID: DIDSinglePhaseRadian, Name: "Single Phase Radian Inverter Real Time Block", Fields: singlePhaseRadianFields},
	DIDFlexNetDCRealTime:          {DID: DIDFlexNetDCRealTime, Name: "FLEXnet-DC Real Time Block", Fields: flexNetDCFields},
	DIDFlexNetDCConfig:            {DID: DIDFlexNetDCConfig, Name: "FLEXnet-DC Configuration Block"},
	DIDOutbackSystemControl:       {DID: DIDOutbackSystemControl, Name: "Outback System Control Block"},
	DIDSunSpecInverterSinglePhase: {DID: DIDSunSpecInverterSinglePhase, Name: "SunSpec Inverter - Single Phase"},
	DIDSunSpecInverterSplitPhase:  {DID: DIDSunSpecInverterSplitPhase, Name: "SunSpec Inverter - Split Phase"},
	DIDSunSpecInverterThreePhase:  {DID: DIDSunSpecInverterThreePhase, Name: "SunSpec Inverter - Three Phase"},
	DIDOpticsREStatistics:         {DID: DIDOpticsREStatistics, Name: "OpticsRE Statistics Block"},
	DIDEndOfSunSpec:               {DID: DIDEndOfSunSpec, Name: "End of SunSpec"},
}

// SchemaFor returns the schema registered for did.
// ok is false for DIDs the registry does not know; that is not an error.
func SchemaFor(did uint16) (BlockSchema, bool) {
	s, ok := registry[did]
	return s, ok
}

// Name returns the display name for did, or UnknownName.
func Name(did uint16) string {
	if s, ok := registry[did]; ok {
		return s.Name
	}
	return UnknownName
}
