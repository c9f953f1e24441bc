package ntp

import (
	"math"
	"time"
)

const (
	EraLength     int64   = 4_294_967_296 // 2^32
	UnixEraOffset int64   = 2_208_988_800 // 1970 - 1900 in seconds
	ShortLength   float64 = 65536         // 2^16
)

func TimestampFromTime(t time.Time) TimestampEncoded {
	seconds := TimestampEncoded(t.Unix()+UnixEraOffset) << 32
	fraction := TimestampEncoded(t.Nanosecond()) << 32 / 1e9
	return seconds + fraction
}

// TimeFromTimestamp maps the 32-bit second count onto the era nearest
// ref. Era 0 runs out in 2036; a pinned era would too.
func TimeFromTimestamp(ntpTimestamp TimestampEncoded, ref time.Time) time.Time {
	sec := int64(ntpTimestamp>>32) - UnixEraOffset
	frac := int64(ntpTimestamp & 0xFFFFFFFF)
	nsec := int64(math.Round(float64(frac) / float64(EraLength) * 1e9))

	eras := math.Round(float64(ref.Unix()-sec) / float64(EraLength))
	sec += int64(eras) * EraLength

	return time.Unix(sec, nsec)
}

func ShortToDouble(short ShortEncoded) float64 {
	return float64(short) / ShortLength
}

func Log2ToDouble(a int8) float64 {
	if a < 0 {
		return 1.0 / float64(int64(1)<<-a)
	}
	return float64(int64(1) << a)
}
