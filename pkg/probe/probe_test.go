package probe

import (
	"errors"
	"math"
	"testing"

	"github.com/erikh/uptime/pkg/timeval"
	"github.com/erikh/uptime/pkg/utmpx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fixedClock struct {
	tv  timeval.Timeval
	err error
}

func (fc fixedClock) Now() (timeval.Timeval, error) {
	return fc.tv, fc.err
}

type fakeSession struct {
	rec    utmpx.Record
	err    error
	closes *int
}

func (fs fakeSession) Find(utmpx.Type) (utmpx.Record, error) {
	return fs.rec, fs.err
}

func (fs fakeSession) Close() error {
	(*fs.closes)++
	return nil
}

// returns a database backed by a fake session, and counters for opens and closes.
func fakeDatabase(rec utmpx.Record, err error) (utmpx.Database, *int, *int) {
	opens, closes := new(int), new(int)

	return utmpx.Database{
		Open: func() (utmpx.Session, error) {
			(*opens)++
			return fakeSession{rec: rec, err: err, closes: closes}, nil
		},
	}, opens, closes
}

func bootRecord(sec, usec int64) utmpx.Record {
	return utmpx.Record{Type: utmpx.BootTime, Time: timeval.Timeval{Sec: sec, Usec: usec}}
}

func newLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func TestUptimeBorrow(t *testing.T) {
	db, opens, closes := fakeDatabase(bootRecord(50, 800), nil)
	p := &Probe{Clock: fixedClock{tv: timeval.Timeval{Sec: 100, Usec: 300}}, Boot: db}

	up, ok := p.Uptime()
	if !ok {
		t.Fatal("uptime was absent")
	}

	if math.Abs(up-49.9995) > 1e-9 {
		t.Fatalf("unexpected uptime: %v", up)
	}

	if *opens != 1 || *closes != 1 {
		t.Fatalf("session opened %d times and closed %d times", *opens, *closes)
	}
}

func TestUptimeNoBorrow(t *testing.T) {
	db, _, closes := fakeDatabase(bootRecord(50, 300), nil)
	p := &Probe{Clock: fixedClock{tv: timeval.Timeval{Sec: 100, Usec: 900}}, Boot: db}

	up, ok := p.Uptime()
	if !ok {
		t.Fatal("uptime was absent")
	}

	if math.Abs(up-50.0006) > 1e-9 {
		t.Fatalf("unexpected uptime: %v", up)
	}

	if *closes != 1 {
		t.Fatalf("session closed %d times", *closes)
	}
}

func TestUptimeZero(t *testing.T) {
	db, _, _ := fakeDatabase(bootRecord(1700000000, 42), nil)
	p := &Probe{Clock: fixedClock{tv: timeval.Timeval{Sec: 1700000000, Usec: 42}}, Boot: db}

	up, ok := p.Uptime()
	if !ok {
		t.Fatal("uptime was absent")
	}

	if up != 0 {
		t.Fatalf("expected exactly zero, got %v", up)
	}
}

func TestMissingRecord(t *testing.T) {
	log, hook := newLogger()
	db, opens, closes := fakeDatabase(utmpx.Record{}, utmpx.ErrNotFound)
	p := &Probe{Clock: fixedClock{tv: timeval.Timeval{Sec: 100}}, Boot: db, Log: log}

	if up, ok := p.Uptime(); ok {
		t.Fatalf("uptime should be absent, got %v", up)
	}

	if *opens != 1 || *closes != 1 {
		t.Fatalf("session opened %d times and closed %d times", *opens, *closes)
	}

	err, _ := hook.LastEntry().Data[logrus.ErrorKey].(error)
	if !errors.Is(err, ErrBootRecordUnavailable) || !errors.Is(err, utmpx.ErrNotFound) {
		t.Fatalf("unexpected logged error: %v", err)
	}
}

func TestClockFailure(t *testing.T) {
	log, hook := newLogger()
	db, opens, closes := fakeDatabase(bootRecord(50, 0), nil)
	p := &Probe{Clock: fixedClock{err: errors.New("EFAULT")}, Boot: db, Log: log}

	if _, ok := p.Uptime(); ok {
		t.Fatal("uptime should be absent")
	}

	if *opens != 0 || *closes != 0 {
		t.Fatalf("accounting database was touched after a clock failure (%d opens, %d closes)", *opens, *closes)
	}

	err, _ := hook.LastEntry().Data[logrus.ErrorKey].(error)
	if !errors.Is(err, ErrClockUnavailable) {
		t.Fatalf("unexpected logged error: %v", err)
	}
}

func TestBootInFuture(t *testing.T) {
	log, hook := newLogger()
	db, _, closes := fakeDatabase(bootRecord(200, 0), nil)
	p := &Probe{Clock: fixedClock{tv: timeval.Timeval{Sec: 100}}, Boot: db, Log: log}

	if up, ok := p.Uptime(); ok {
		t.Fatalf("uptime should be absent, got %v", up)
	}

	if _, ok := p.BootTime(); ok {
		t.Fatal("boot time should be absent")
	}

	if *closes != 2 {
		t.Fatalf("expected one close per probe, got %d", *closes)
	}

	err, _ := hook.LastEntry().Data[logrus.ErrorKey].(error)
	if !errors.Is(err, ErrBootInFuture) {
		t.Fatalf("unexpected logged error: %v", err)
	}
}

func TestBootTime(t *testing.T) {
	now, err := SystemClock{}.Now()
	if err != nil {
		t.Fatal(err)
	}

	db, _, _ := fakeDatabase(bootRecord(now.Sec-3600, 0), nil)
	p := &Probe{Boot: db}

	bt, ok := p.BootTime()
	if !ok {
		t.Fatal("boot time was absent")
	}

	if diff := bt.Unix() - (now.Sec - 3600); diff < -2 || diff > 2 {
		t.Fatalf("boot time is off by %d seconds", diff)
	}
}

func TestSystemClock(t *testing.T) {
	tv, err := SystemClock{}.Now()
	if err != nil {
		t.Fatal(err)
	}

	if tv.Sec <= 0 || tv.Usec < 0 || tv.Usec >= 1000000 {
		t.Fatalf("nonsensical clock reading: %+v", tv)
	}
}

func TestPlatformProbe(t *testing.T) {
	// containers frequently have no boot record; either outcome is fine as long
	// as a present value is sane.
	if up, ok := Uptime(); ok && up < 0 {
		t.Fatalf("negative uptime: %v", up)
	}
}
