//go:build linux || darwin || freebsd

package diskspace

import "golang.org/x/sys/unix"

func availableBytes(dir string) int64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0
	}
	return int64(stat.Bavail) * int64(stat.Bsize)
}
