// Package frame wraps a payload in a small RIFF container recording its exact
// length, optionally zstd-compressed.
//
// Extraction trims trailing zero bytes, which corrupts payloads ending in
// 0x00. A framed payload survives that: the RIFF header holds the real size,
// and Unpack puts the trimmed zero bytes back.
//
// Layout:
//
//	"RIFF" <size:LE32> "HIMG"
//	"data" <len:LE32> <payload> [pad]     raw payload
//	"zstd" <len:LE32> <payload> [pad]     zstd-compressed payload
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/riff"
)

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	formType = riff.FourCC{'H', 'I', 'M', 'G'}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
	zstdType = riff.FourCC{'z', 's', 't', 'd'}
)

// ErrMalformed is wrapped by every error caused by a damaged frame.
var ErrMalformed = errors.New("malformed frame")

const headerLen = 12

// IsFramed reports whether data starts with a frame header.
func IsFramed(data []byte) bool {
	return len(data) >= headerLen &&
		bytes.Equal(data[0:4], riffType[:]) &&
		bytes.Equal(data[8:12], formType[:])
}

// Pack frames payload, compressing it first when compress is set.
func Pack(payload []byte, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := WriteTo(&buf, payload, compress); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteTo(w io.Writer, payload []byte, compress bool) (int64, error) {
	id, body := dataType, payload
	if compress {
		id, body = zstdType, compressPayload(payload)
	}

	pad := len(body) & 1
	n := 4 + 8 + len(body) + pad // form type + chunk header + body + pad byte
	if uint64(n) > 0xffffffff {
		return 0, fmt.Errorf("payload too large to frame: %d bytes", len(body))
	}

	if err := writeBytes(w, riffType[:]); err != nil {
		return 0, fmt.Errorf("could not write RIFF magic: %w", err)
	}

	if err := writeBytes(w, binary.LittleEndian.AppendUint32(nil, uint32(n))); err != nil {
		return 4, fmt.Errorf("could not write document size: %w", err)
	}

	if err := writeBytes(w, formType[:]); err != nil {
		return 8, fmt.Errorf("could not write content type: %w", err)
	}

	count, err := writeChunk(w, id, body)
	return headerLen + count, err
}

func writeChunk(w io.Writer, id riff.FourCC, body []byte) (int64, error) {
	if err := writeBytes(w, id[:]); err != nil {
		return 0, fmt.Errorf("could not write chunk type: %w", err)
	}

	if err := writeBytes(w, binary.LittleEndian.AppendUint32(nil, uint32(len(body)))); err != nil {
		return 4, fmt.Errorf("could not write chunk size: %w", err)
	}

	if err := writeBytes(w, body); err != nil {
		return 8, fmt.Errorf("could not write chunk %s: %w", id[:], err)
	}

	if len(body)&1 == 1 {
		if err := writeBytes(w, []byte{0}); err != nil {
			return int64(8 + len(body)), fmt.Errorf("could not write chunk padding: %w", err)
		}
		return int64(8 + len(body) + 1), nil
	}
	return int64(8 + len(body)), nil
}

func writeBytes(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return err
	} else if n != len(b) {
		return fmt.Errorf("wrote only %d/%d bytes", n, len(b))
	}

	return nil
}

// Unpack returns the payload held by a frame. Zero bytes missing from the end
// of data are restored from the recorded size. limit is the largest frame the
// source could hold, usually the carrier capacity; larger sizes are rejected.
func Unpack(data []byte, limit int) ([]byte, error) {
	if !IsFramed(data) {
		return nil, fmt.Errorf("%w: missing RIFF %s header", ErrMalformed, formType[:])
	}

	total := 8 + int64(binary.LittleEndian.Uint32(data[4:8]))
	if total > int64(limit) {
		return nil, fmt.Errorf("%w: frame claims %d bytes, at most %d available", ErrMalformed, total, limit)
	}
	if missing := total - int64(len(data)); missing > 0 {
		data = append(data[:len(data):len(data)], make([]byte, missing)...)
	}
	data = data[:total]

	_, rd, err := riff.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: could not open RIFF stream: %w", ErrMalformed, err)
	}

	for {
		id, _, chunk, err := rd.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: could not read chunk: %w", ErrMalformed, err)
		}

		switch id {
		case dataType:
			body, err := io.ReadAll(chunk)
			if err != nil {
				return nil, fmt.Errorf("%w: could not read payload: %w", ErrMalformed, err)
			}
			return body, nil
		case zstdType:
			body, err := io.ReadAll(chunk)
			if err != nil {
				return nil, fmt.Errorf("%w: could not read payload: %w", ErrMalformed, err)
			}
			return decompressPayload(body)
		}
		// unknown chunks are skipped
	}

	return nil, fmt.Errorf("%w: no payload chunk", ErrMalformed)
}
