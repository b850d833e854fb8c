// internal/status/constants.go
package status

// Device health and error codes.
// These values are published as metrics and MUST NOT be renumbered.

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy device.
const HealthOK uint16 = 1

// HealthError represents a device error state.
const HealthError uint16 = 2

// ---- ERROR CODES ----

// CodeNone means the last cycle succeeded.
const CodeNone uint16 = 0

// CodeGeneric is any failure that has no more specific code.
const CodeGeneric uint16 = 1

// CodeUnavailable is a transport failure (timeout, disconnect, refused dial).
const CodeUnavailable uint16 = 2

// CodeNoSignature means no SunSpec signature at the base address.
const CodeNoSignature uint16 = 3

// CodeNotOutback means a SunSpec device from another manufacturer.
const CodeNotOutback uint16 = 4

// CodeChainNotTerminated means the block walk hit its bound without a terminator.
const CodeChainNotTerminated uint16 = 5

// CodeAddressOverflow means a block length pointed past the register space.
const CodeAddressOverflow uint16 = 6

// CodeModbusException is the base for device exception responses;
// the exception code is added to it.
const CodeModbusException uint16 = 0x100

// ---- LIMITS ----

// SecondsInErrorMax is where the seconds-in-error counter saturates.
const SecondsInErrorMax uint16 = 65535
