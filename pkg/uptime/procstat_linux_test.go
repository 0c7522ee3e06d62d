package uptime

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const procStatFixture = `cpu  10132153 290696 3084719 46828483 16683 0 25195 0 175628 0
cpu0 1393280 32966 572056 13343292 6130 0 17875 0 23933 0
intr 1462898 0 0 0
ctxt 115315133
btime 1700000000
processes 40386
procs_running 2
procs_blocked 0
softirq 5057579 250191 1481983 1647 211099 186066 0 1783454 622196 12499 508444
`

func TestProcStat(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stat"), []byte(procStatFixture), 0600); err != nil {
		t.Fatal(err)
	}

	s := procStat{root: dir, now: func() time.Time { return time.Unix(1700000360, 0) }}

	up, ok := s.Uptime()
	if !ok || up != 360 {
		t.Fatalf("unexpected result: %v %v", up, ok)
	}

	s.now = func() time.Time { return time.Unix(1600000000, 0) }
	if _, ok := s.Uptime(); ok {
		t.Fatal("boot time in the future should be rejected")
	}

	if _, ok := (procStat{root: filepath.Join(dir, "missing"), now: time.Now}).Uptime(); ok {
		t.Fatal("missing procfs produced a value")
	}
}
