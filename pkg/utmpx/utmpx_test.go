package utmpx

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/erikh/uptime/pkg/timeval"
)

func encodeRecord(rec Record) []byte {
	buf := make([]byte, recordSize)
	order := binary.NativeEndian

	order.PutUint16(buf[offType:], uint16(rec.Type))
	order.PutUint32(buf[offPID:], uint32(rec.PID))
	copy(buf[offLine:offLine+lineSize], rec.Line)
	copy(buf[offUser:offUser+userSize], rec.User)
	copy(buf[offHost:offHost+hostSize], rec.Host)
	order.PutUint32(buf[offTvSec:], uint32(int32(rec.Time.Sec)))
	order.PutUint32(buf[offTvUsec:], uint32(int32(rec.Time.Usec)))

	return buf
}

func writeFile(t *testing.T, records ...Record) string {
	path := filepath.Join(t.TempDir(), "utmp")

	out := []byte{}
	for _, rec := range records {
		out = append(out, encodeRecord(rec)...)
	}

	if err := os.WriteFile(path, out, 0600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestFileFindBootTime(t *testing.T) {
	boot := timeval.Timeval{Sec: 1700000000, Usec: 250000}

	path := writeFile(t,
		Record{Type: RunLevel, PID: 53, User: "runlevel", Line: "~", Time: timeval.Timeval{Sec: 1700000010}},
		Record{Type: UserProcess, PID: 1000, User: "erikh", Line: "pts/0", Host: "10.0.0.1", Time: timeval.Timeval{Sec: 1700000100}},
		Record{Type: BootTime, User: "reboot", Line: "~", Host: "6.1.0", Time: boot},
	)

	s, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rec, err := s.Find(BootTime)
	if err != nil {
		t.Fatal(err)
	}

	if rec.Time != boot {
		t.Fatalf("unexpected boot time: %+v", rec.Time)
	}

	if rec.User != "reboot" || rec.Line != "~" || rec.Host != "6.1.0" {
		t.Fatalf("strings were not decoded properly: %+v", rec)
	}

	if _, err := s.Find(BootTime); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second boot record lookup did not hit the end of the file: %v", err)
	}
}

func TestFileMissingRecord(t *testing.T) {
	path := writeFile(t,
		Record{Type: UserProcess, PID: 1000, User: "erikh", Time: timeval.Timeval{Sec: 1700000100}},
	)

	if _, err := Lookup(func() (Session, error) { return OpenFile(path) }, BootTime); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := (Database{Path: path}).BootTimestamp(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileTruncatedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utmp")
	if err := os.WriteFile(path, encodeRecord(Record{Type: BootTime})[:100], 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := (Database{Path: path}).BootTimestamp(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a truncated record, got %v", err)
	}
}

func TestFileMissing(t *testing.T) {
	if _, err := (Database{Path: filepath.Join(t.TempDir(), "nope")}).BootTimestamp(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}

func TestDatabasePath(t *testing.T) {
	boot := timeval.Timeval{Sec: 1600000000, Usec: 999999}
	path := writeFile(t, Record{Type: BootTime, Time: boot})

	tv, err := (Database{Path: path}).BootTimestamp()
	if err != nil {
		t.Fatal(err)
	}

	if tv != boot {
		t.Fatalf("unexpected boot time: %+v", tv)
	}
}

func TestSessionClose(t *testing.T) {
	s, err := OpenFile(writeFile(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Find(UserProcess); !errors.Is(err, ErrType) {
		t.Fatalf("process records cannot be looked up by type, got %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if err := s.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("double close was not reported: %v", err)
	}

	if _, err := s.Find(BootTime); !errors.Is(err, ErrClosed) {
		t.Fatalf("find after close was not reported: %v", err)
	}
}

type countingSession struct {
	rec    Record
	err    error
	closes int
}

func (cs *countingSession) Find(Type) (Record, error) {
	return cs.rec, cs.err
}

func (cs *countingSession) Close() error {
	cs.closes++
	return nil
}

func TestLookupReleasesOnce(t *testing.T) {
	found := &countingSession{rec: Record{Type: BootTime, Time: timeval.Timeval{Sec: 5}}}
	missing := &countingSession{err: ErrNotFound}

	for _, cs := range []*countingSession{found, missing} {
		cs := cs
		_, _ = Lookup(func() (Session, error) { return cs, nil }, BootTime)

		if cs.closes != 1 {
			t.Fatalf("session was closed %d times", cs.closes)
		}
	}
}

func TestLookupOpenFailure(t *testing.T) {
	if _, err := Lookup(func() (Session, error) { return nil, ErrUnsupported }, BootTime); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("open error was not returned: %v", err)
	}
}

func TestPlatformDatabase(t *testing.T) {
	// the record may legitimately be missing (containers, musl); just make sure
	// nothing panics and the session is released so a second lookup works.
	for i := 0; i < 2; i++ {
		tv, err := (Database{}).BootTimestamp()
		if err != nil {
			t.Logf("platform database: %v", err)
			continue
		}

		if tv.Sec <= 0 {
			t.Fatalf("boot record has a nonsensical time: %+v", tv)
		}
	}
}
