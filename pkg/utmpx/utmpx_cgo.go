//go:build cgo && (linux || darwin || freebsd || netbsd || solaris)

package utmpx

/*
#include <string.h>
#include <utmpx.h>

static struct utmpx *find_by_type(short typ) {
	struct utmpx id;

	memset(&id, 0, sizeof(id));
	id.ut_type = typ;
	return getutxid(&id);
}
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/erikh/uptime/pkg/timeval"
)

// libc keeps a single cursor per process; a session owns it until Close.
var cursorMutex sync.Mutex

type cgoSession struct {
	closed bool
}

func openDatabase() (Session, error) {
	cursorMutex.Lock()
	C.setutxent()

	return &cgoSession{}, nil
}

func cType(typ Type) (C.short, bool) {
	switch typ {
	case BootTime:
		return C.BOOT_TIME, true
	case NewTime:
		return C.NEW_TIME, true
	case OldTime:
		return C.OLD_TIME, true
	}

	return 0, false
}

func (s *cgoSession) Find(typ Type) (Record, error) {
	if s.closed {
		return Record{}, ErrClosed
	}

	ct, ok := cType(typ)
	if !ok {
		return Record{}, ErrType
	}

	res := C.find_by_type(ct)
	if res == nil {
		return Record{}, ErrNotFound
	}

	return Record{
		Type: typ,
		PID:  int32(res.ut_pid),
		Line: cstring(C.GoBytes(unsafe.Pointer(&res.ut_line[0]), C.int(len(res.ut_line)))),
		User: cstring(C.GoBytes(unsafe.Pointer(&res.ut_user[0]), C.int(len(res.ut_user)))),
		Host: cstring(C.GoBytes(unsafe.Pointer(&res.ut_host[0]), C.int(len(res.ut_host)))),
		Time: timeval.Timeval{
			Sec:  int64(res.ut_tv.tv_sec),
			Usec: int64(res.ut_tv.tv_usec),
		},
	}, nil
}

func (s *cgoSession) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	C.endutxent()
	cursorMutex.Unlock()

	return nil
}
