//go:build linux

package disk

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	mountsFile = "/proc/self/mounts"
	sysRoot    = "/sys"
)

// mountEntry is one parsed line of a mounts table.
type mountEntry struct {
	device     string
	mountPoint string
	fsType     string
}

// pseudoFS lists filesystem types that never hold user data worth scanning.
var pseudoFS = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true,
	"cgroup": true, "cgroup2": true, "securityfs": true, "pstore": true,
	"debugfs": true, "tracefs": true, "configfs": true, "fusectl": true,
	"mqueue": true, "hugetlbfs": true, "bpf": true, "autofs": true,
	"binfmt_misc": true, "rpc_pipefs": true, "nsfs": true, "efivarfs": true,
	"selinuxfs": true,
}

func listVolumes() ([]Volume, error) {
	f, err := os.Open(mountsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := parseMounts(f)
	if err != nil {
		return nil, err
	}
	return buildVolumes(entries, statfs, sysRoot), nil
}

// parseMounts reads fstab-formatted lines, decoding the octal escapes the
// kernel uses for spaces and tabs in paths.
func parseMounts(r io.Reader) ([]mountEntry, error) {
	var entries []mountEntry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		entries = append(entries, mountEntry{
			device:     unescapeMount(fields[0]),
			mountPoint: unescapeMount(fields[1]),
			fsType:     fields[2],
		})
	}
	return entries, sc.Err()
}

func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

type statfsFunc func(path string) (total, free uint64, err error)

func statfs(path string) (total, free uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bavail * bsize, nil
}

// buildVolumes turns mount entries into volumes. Pseudo filesystems and
// mount points that cannot be stat'ed are dropped; when a mount point is
// listed more than once the last entry wins, as the kernel stacks them.
func buildVolumes(entries []mountEntry, stat statfsFunc, sys string) []Volume {
	byMount := make(map[string]int)
	var volumes []Volume
	for _, e := range entries {
		if pseudoFS[e.fsType] {
			continue
		}
		total, free, err := stat(e.mountPoint)
		if err != nil || total == 0 {
			continue
		}
		v := Volume{
			MountPoint: e.mountPoint,
			Device:     e.device,
			FSType:     e.fsType,
			TotalBytes: total,
			FreeBytes:  free,
			Kind:       deviceKind(sys, e.device),
		}
		if i, ok := byMount[e.mountPoint]; ok {
			volumes[i] = v
			continue
		}
		byMount[e.mountPoint] = len(volumes)
		volumes = append(volumes, v)
	}
	return volumes
}

// deviceKind reads the rotational flag of the block device backing dev.
// Partitions report through their parent disk.
func deviceKind(sys, dev string) Kind {
	if !strings.HasPrefix(dev, "/dev/") {
		return KindUnknown
	}
	if resolved, err := filepath.EvalSymlinks(dev); err == nil {
		dev = resolved
	}
	blockDir := filepath.Join(sys, "class", "block", filepath.Base(dev))
	if real, err := filepath.EvalSymlinks(blockDir); err == nil {
		blockDir = real
	}
	if _, err := os.Stat(filepath.Join(blockDir, "partition")); err == nil {
		blockDir = filepath.Dir(blockDir)
	}

	data, err := os.ReadFile(filepath.Join(blockDir, "queue", "rotational"))
	if err != nil {
		return KindUnknown
	}
	switch strings.TrimSpace(string(data)) {
	case "0":
		return KindSSD
	case "1":
		return KindHDD
	default:
		return KindUnknown
	}
}
