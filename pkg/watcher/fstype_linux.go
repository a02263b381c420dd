//go:build linux

package watcher

import "golang.org/x/sys/unix"

// Magic numbers from statfs(2).
const (
	nfsSuperMagic    = 0x6969
	smbSuperMagic    = 0x517b
	cifsSuperMagic   = 0xff534d42
	smb2SuperMagic   = 0xfe534d42
	fuseSuperMagic   = 0x65735546
	v9fsSuperMagic   = 0x01021997
	afsSuperMagic    = 0x5346414f
	cephSuperMagic   = 0x00c36400
	lustreSuperMagic = 0x0bd00bd0
)

func detectFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	switch int64(st.Type) {
	case nfsSuperMagic:
		return FSTypeNFS
	case smbSuperMagic, cifsSuperMagic, smb2SuperMagic:
		return FSTypeSMB
	case fuseSuperMagic:
		// sshfs mounts report plain FUSE.
		return FSTypeFUSE
	case v9fsSuperMagic, afsSuperMagic, cephSuperMagic, lustreSuperMagic:
		return FSTypeNFS
	default:
		return FSTypeLocal
	}
}
