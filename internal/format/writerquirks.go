package format

import "strings"

// KnownBuggyDictionaryHeaderWriter reports whether createdBy identifies a
// writer version known to omit the optional fields of a dictionary page
// header. Other writers omitting the same fields are a genuine
// malformed-file error rather than a tolerated quirk.
func KnownBuggyDictionaryHeaderWriter(createdBy string) bool {
	return strings.Contains(strings.ToLower(createdBy), "impala version 1.1")
}

// IsLegacyHiveWriter reports whether createdBy identifies a writer whose
// INT96 timestamps were written as instant-in-UTC rather than the
// session-local wall-clock convention the legacy Hive/Impala stack used.
// Only INT96-typed columns written by such a writer are eligible for the
// convert_legacy_utc_timestamps conversion; TIMESTAMP_MILLIS/MICROS-typed
// INT64 columns are never affected, regardless of writer. Every parquet-mr
// build still converts, so the check is the bare "parquet-mr" token with
// no version or build-string filtering.
func IsLegacyHiveWriter(createdBy string) bool {
	return strings.Contains(strings.ToLower(createdBy), "parquet-mr")
}
