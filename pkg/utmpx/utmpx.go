// Package utmpx reads records from the user accounting database.
//
// POSIX specifies the utmpx interface but not the values of its constants or
// the layout of struct utmpx, so every platform-specific detail lives behind
// the Session interface. Sessions are scoped: open, look up, close.
package utmpx

import (
	"errors"

	"github.com/erikh/uptime/pkg/timeval"
)

type Type int16

// Record types, numbered as glibc numbers them.
const (
	Empty Type = iota
	RunLevel
	BootTime
	NewTime
	OldTime
	InitProcess
	LoginProcess
	UserProcess
	DeadProcess
)

var (
	ErrNotFound    = errors.New("no matching accounting record")
	ErrUnsupported = errors.New("the accounting database is not available on this platform")
	ErrClosed      = errors.New("accounting session already closed")
	ErrType        = errors.New("record type cannot be looked up by type")
)

type Record struct {
	Type Type
	PID  int32
	Line string
	User string
	Host string
	Time timeval.Timeval
}

// Session is one pass over the accounting database. Close must be called
// exactly once; calling it again returns ErrClosed.
type Session interface {
	// Find advances to the next record of the given type, following getutxid
	// semantics. Only BootTime, NewTime and OldTime may be looked up.
	Find(Type) (Record, error)
	Close() error
}

type Opener func() (Session, error)

// Open starts a session against the platform's accounting database.
func Open() (Session, error) {
	return openDatabase()
}

func lookupByType(typ Type) bool {
	switch typ {
	case BootTime, NewTime, OldTime:
		return true
	}

	return false
}

// Lookup opens a session, finds the first record of type typ and releases the
// session before returning, whether or not a record was found.
func Lookup(open Opener, typ Type) (Record, error) {
	if open == nil {
		open = Open
	}

	s, err := open()
	if err != nil {
		return Record{}, err
	}
	defer s.Close()

	return s.Find(typ)
}

// Database locates the boot record. Open takes precedence, then Path, which
// is read as a glibc utmp file; with neither set the platform database is used.
type Database struct {
	Path string
	Open Opener
}

func (db Database) opener() Opener {
	if db.Open != nil {
		return db.Open
	}

	if db.Path == "" {
		return Open
	}

	return func() (Session, error) {
		return OpenFile(db.Path)
	}
}

func (db Database) BootTimestamp() (timeval.Timeval, error) {
	rec, err := Lookup(db.opener(), BootTime)
	if err != nil {
		return timeval.Timeval{}, err
	}

	return rec.Time, nil
}
