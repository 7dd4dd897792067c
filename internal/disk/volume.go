// Package disk resolves which mounted volume owns a path and what kind of
// media backs it.
package disk

import (
	"path/filepath"
	"strings"
)

// Kind classifies the storage media behind a volume.
type Kind int

const (
	KindUnknown Kind = iota
	KindSSD
	KindHDD
)

func (k Kind) String() string {
	switch k {
	case KindSSD:
		return "SSD"
	case KindHDD:
		return "HDD"
	default:
		return "Unknown"
	}
}

// Volume is one mounted filesystem.
type Volume struct {
	MountPoint string
	Device     string
	FSType     string
	TotalBytes uint64
	FreeBytes  uint64
	Kind       Kind
}

// UsedPercent returns percentage of the volume in use.
func (v Volume) UsedPercent() float64 {
	if v.TotalBytes == 0 {
		return 0
	}
	return float64(v.TotalBytes-v.FreeBytes) / float64(v.TotalBytes) * 100
}

// Info is what a scan needs to know about the volume it runs on.
// The zero value means no volume matched: capacity unknown, kind unknown.
type Info struct {
	MountPoint string
	TotalBytes uint64
	Kind       Kind
}

// Label returns the device-kind label shown to users.
func (i Info) Label() string { return i.Kind.String() }

// PreferParallel reports whether the media benefits from concurrent reads.
// Only solid-state volumes qualify; rotational and unknown media do not.
func (i Info) PreferParallel() bool { return i.Kind == KindSSD }

// Resolver maps paths to volume information.
type Resolver struct {
	list func() ([]Volume, error)
}

// NewResolver returns a Resolver backed by the host's mount table.
func NewResolver() *Resolver {
	return &Resolver{list: List}
}

// NewStaticResolver returns a Resolver over a fixed volume set.
func NewStaticResolver(volumes []Volume) *Resolver {
	return &Resolver{list: func() ([]Volume, error) { return volumes, nil }}
}

// Resolve returns the Info of the volume whose mount point is the longest
// prefix of path. It never fails: enumeration errors and unmatched paths
// yield the zero Info.
func (r *Resolver) Resolve(path string) Info {
	if r == nil || r.list == nil {
		return Info{}
	}
	volumes, err := r.list()
	if err != nil {
		return Info{}
	}
	v, ok := Match(volumes, path)
	if !ok {
		return Info{}
	}
	return Info{MountPoint: v.MountPoint, TotalBytes: v.TotalBytes, Kind: v.Kind}
}

// Match picks the volume owning path by longest mount-point prefix.
// Prefixes only match on whole path components, so /data does not own
// /database.
func Match(volumes []Volume, path string) (Volume, bool) {
	path = filepath.Clean(path)
	best := -1
	bestLen := -1
	for i, v := range volumes {
		mp := filepath.Clean(v.MountPoint)
		if !ownsPath(mp, path) {
			continue
		}
		if len(mp) > bestLen {
			best, bestLen = i, len(mp)
		}
	}
	if best < 0 {
		return Volume{}, false
	}
	return volumes[best], true
}

func ownsPath(mountPoint, path string) bool {
	if mountPoint == path {
		return true
	}
	if !strings.HasPrefix(path, mountPoint) {
		return false
	}
	if strings.HasSuffix(mountPoint, string(filepath.Separator)) {
		return true
	}
	return path[len(mountPoint)] == filepath.Separator
}

// List returns the mounted volumes of the host. Platforms without support
// return an empty list.
func List() ([]Volume, error) {
	return listVolumes()
}
