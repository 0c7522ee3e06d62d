package utmpx

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/erikh/uptime/pkg/timeval"
)

// DefaultPath is where glibc keeps the utmp file.
const DefaultPath = "/var/run/utmp"

// glibc struct utmp. ut_tv is two int32s on every architecture glibc ships
// this layout for, including the 64-bit ones.
const (
	recordSize = 384

	offType   = 0
	offPID    = 4
	offLine   = 8
	offUser   = 44
	offHost   = 76
	offTvSec  = 340
	offTvUsec = 344

	lineSize = 32
	userSize = 32
	hostSize = 256
)

type fileSession struct {
	file   *os.File
	reader *bufio.Reader
	closed bool
}

// OpenFile starts a session over a utmp file without going through libc.
func OpenFile(path string) (Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open accounting file %q: %w", path, err)
	}

	return &fileSession{file: f, reader: bufio.NewReaderSize(f, recordSize*16)}, nil
}

func (s *fileSession) Find(typ Type) (Record, error) {
	if s.closed {
		return Record{}, ErrClosed
	}

	if !lookupByType(typ) {
		return Record{}, ErrType
	}

	buf := make([]byte, recordSize)

	for {
		if _, err := io.ReadFull(s.reader, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Record{}, ErrNotFound
			}

			return Record{}, err
		}

		rec := decodeRecord(buf)
		if rec.Type == typ {
			return rec, nil
		}
	}
}

func (s *fileSession) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	return s.file.Close()
}

func decodeRecord(buf []byte) Record {
	order := binary.NativeEndian

	return Record{
		Type: Type(int16(order.Uint16(buf[offType:]))),
		PID:  int32(order.Uint32(buf[offPID:])),
		Line: cstring(buf[offLine : offLine+lineSize]),
		User: cstring(buf[offUser : offUser+userSize]),
		Host: cstring(buf[offHost : offHost+hostSize]),
		Time: timeval.Timeval{
			Sec:  int64(int32(order.Uint32(buf[offTvSec:]))),
			Usec: int64(int32(order.Uint32(buf[offTvUsec:]))),
		},
	}
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(b)
}
