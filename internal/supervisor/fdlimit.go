package supervisor

import "golang.org/x/sys/unix"

// targetNoFile is the open-file-descriptor ceiling fricu-server asks for
// at startup: comfortably above worst-case fan-out across the whole
// worker pool, but never raised past the hard limit the OS already
// allows.
const targetNoFile = 200000

// TuneFDLimit raises the process's RLIMIT_NOFILE soft limit toward
// targetNoFile, capped at whatever the hard limit already permits. It is
// best-effort: a container or sandboxed environment that forbids raising
// the soft limit at all is reported as an error so the caller can log it,
// but the server still runs with whatever limit it started with. The
// returned int is the soft limit actually in effect once TuneFDLimit
// returns, including when raising it fails; only when Getrlimit itself
// fails is it 0. Callers use it to size the per-worker connection-state
// slot array.
func TuneFDLimit() (int, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 0, err
	}

	target := lim.Cur
	if target < targetNoFile {
		if lim.Max < targetNoFile {
			target = lim.Max
		} else {
			target = targetNoFile
		}
	}
	if target <= lim.Cur {
		return int(lim.Cur), nil
	}
	raised := lim
	raised.Cur = target
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &raised); err != nil {
		return int(lim.Cur), err
	}
	return int(target), nil
}
