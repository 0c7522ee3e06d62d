//go:build !linux && !(cgo && (darwin || freebsd || netbsd || solaris))

package utmpx

func openDatabase() (Session, error) {
	return nil, ErrUnsupported
}
