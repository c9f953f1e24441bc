package ntp

type TimestampEncoded = uint64

type ShortEncoded = uint32

type Mode byte

const (
	RESERVED Mode = iota
	SYMMETRIC_ACTIVE
	SYMMETRIC_PASSIVE
	CLIENT
	SERVER
	BROADCAST_SERVER
	BROADCAST_CLIENT
	RESERVED_PRIVATE_USE
)

const VERSION byte = 4    // NTP version number
const MINVERSION byte = 3 // oldest version this client will speak
const NOSYNC byte = 0x3   // leap unsync

const (
	Port       = "123" // NTP port number
	PacketSize = 48    // header size, the on-wire minimum
)
