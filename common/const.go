package common

import "math"

const (
	PacketSize = 188
	PtsWrap    = 1 << 33
	TimeScale  = 90000
)

const (
	DefaultProviderID   = "0x1"
	DefaultProviderName = "YourProvider"
	SidecarVersion      = "1.0"
	SCTE35SchemeIDURI   = "urn:scte:scte35:2013:bin"
)

// SecondsToTicks converts seconds to 90kHz ticks, rounding to the nearest tick.
func SecondsToTicks(seconds float64) uint64 {
	return uint64(math.Round(seconds * TimeScale))
}

func TicksToSeconds(ticks uint64) float64 {
	return float64(ticks) / TimeScale
}

// AddPTS adds two 33-bit timestamps with wrap-around.
func AddPTS(p1, p2 uint64) uint64 {
	return (p1 + p2) % PtsWrap
}
