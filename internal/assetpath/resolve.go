package assetpath

import "strings"

// Resolve turns a descriptor into a project path.
//
// EMPTY yields ownerFolder + ownerName + DefaultSuffix. ABSOLUTE strips exactly
// one leading separator and ignores ownerFolder. RELATIVE is a plain
// concatenation with ownerFolder; "." and ".." segments are left in place.
func Resolve(ownerFolder, ownerName string, d Descriptor) string {
	switch d.Kind {
	case KindAbsolute:
		return strings.TrimPrefix(d.Value, Separator)
	case KindRelative:
		return ownerFolder + d.Value
	default:
		return ownerFolder + ownerName + DefaultSuffix
	}
}

// ResolveLocation resolves d for an owner stored at location.
func ResolveLocation(location string, d Descriptor) (string, error) {
	folder, err := OwnerFolder(location)
	if err != nil {
		return "", err
	}
	return Resolve(folder, OwnerName(location), d), nil
}
