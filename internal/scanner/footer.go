package scanner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/ioservice"
	"github.com/janplus/Impala/internal/thriftcompact"
)

// parquetMagic is the 4-byte magic Parquet writes at the start and end of
// every file.
var parquetMagic = []byte("PAR1")

// ReadFooter reads the last footerSizeBytes of the file, verifies the
// trailing magic, reads the 4-byte little-endian metadata length
// immediately preceding it, and — if the metadata extends before the
// buffered region — issues additional reads through mgr and stitches
// before deserializing.
func ReadFooter(ctx context.Context, mgr ioservice.Manager, path string, footerSizeBytes int64, maxPageHeaderBytes int) (*format.FileMetaData, int64, error) {
	fileSize, err := mgr.Size(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scanner: stat file")
	}
	if fileSize < int64(len(parquetMagic))*2+4 {
		return nil, 0, errors.Wrap(ErrTruncated, "scanner: file too small to contain a footer")
	}

	if footerSizeBytes <= 0 || footerSizeBytes > fileSize {
		footerSizeBytes = fileSize
	}
	tailStart := fileSize - footerSizeBytes
	tail, err := mgr.Read(ctx, mgr.AllocateRange(path, tailStart, footerSizeBytes, ""))
	if err != nil {
		return nil, 0, errors.Wrap(err, "scanner: reading footer tail")
	}

	if !bytes.Equal(tail[len(tail)-4:], parquetMagic) {
		return nil, 0, errors.Wrapf(ErrBadMagic, "trailing bytes %x", tail[len(tail)-4:])
	}
	lenOff := len(tail) - 4 - 4
	if lenOff < 0 {
		return nil, 0, errors.Wrap(ErrTruncated, "scanner: footer tail too small for metadata length field")
	}
	metaLen := int64(binary.LittleEndian.Uint32(tail[lenOff : lenOff+4]))
	if metaLen <= 0 || metaLen > fileSize-8 {
		return nil, 0, errors.Wrapf(ErrTruncated, "scanner: implausible metadata length %d", metaLen)
	}

	metaStart := fileSize - 8 - metaLen
	var metaBytes []byte
	if metaStart >= tailStart {
		// The whole metadata region is already inside the buffered tail.
		metaBytes = tail[metaStart-tailStart : lenOff]
	} else {
		// Metadata extends before the buffered region: issue one more read
		// for the missing prefix and stitch it to what's already buffered.
		missingLen := tailStart - metaStart
		prefix, err := mgr.Read(ctx, mgr.AllocateRange(path, metaStart, missingLen, ""))
		if err != nil {
			return nil, 0, errors.Wrap(err, "scanner: reading footer metadata prefix")
		}
		metaBytes = append(prefix, tail[:lenOff]...)
	}

	// The whole metadata buffer is already in memory, so the peek ceiling
	// only needs to cover its own length — unlike a page header, there's no
	// further I/O a larger ceiling would have to justify.
	peekCeiling := maxPageHeaderBytes
	if len(metaBytes) > peekCeiling {
		peekCeiling = len(metaBytes)
	}
	st, _, err := thriftcompact.ReadStructFromPeekingReader(bufio.NewReaderSize(bytes.NewReader(metaBytes), peekCeiling), peekCeiling)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scanner: decoding footer metadata struct")
	}
	meta, err := format.DecodeFileMetaData(st)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scanner: decoding FileMetaData")
	}
	return meta, fileSize, nil
}
