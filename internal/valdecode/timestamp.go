package valdecode

import "time"

// julianDayUnixEpoch is the Julian day number of 1970-01-01, used to
// convert a Parquet INT96 timestamp's Julian-day component into a Unix day
// offset.
const julianDayUnixEpoch = 2440588

const nanosPerDay = int64(24 * time.Hour)

// DecodeInt96Timestamp decodes the legacy INT96 timestamp encoding: the
// first 8 bytes (little-endian) are nanoseconds since midnight, the last 4
// bytes (little-endian) are the Julian day number.
func DecodeInt96Timestamp(b [12]byte) time.Time {
	nanosOfDay := int64(b[0]) | int64(b[1])<<8 | int64(b[2])<<16 | int64(b[3])<<24 |
		int64(b[4])<<32 | int64(b[5])<<40 | int64(b[6])<<48 | int64(b[7])<<56
	julianDay := int32(uint32(b[8]) | uint32(b[9])<<8 | uint32(b[10])<<16 | uint32(b[11])<<24)

	unixDays := int64(julianDay) - julianDayUnixEpoch
	unixNanos := unixDays*nanosPerDay + nanosOfDay
	return time.Unix(0, unixNanos).UTC()
}

// ConvertLegacyUTCToLocal converts a timestamp that a legacy Hive/Impala
// writer stamped as an instant in UTC into the equivalent wall-clock time
// in loc. Gated by the caller on format.IsLegacyHiveWriter and the
// column's physical type being INT96 (see internal/format/writerquirks.go).
func ConvertLegacyUTCToLocal(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc)
}
