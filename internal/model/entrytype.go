package model

import "io/fs"

// EntryType is the classified type of a directory entry.
type EntryType uint8

const (
	TypeUnknown EntryType = iota
	TypeRegular
	TypeDirectory
	TypeSymlink
	TypeOther
)

// Tag returns the single-letter output tag, or "" for types that are not tagged.
func (t EntryType) Tag() string {
	switch t {
	case TypeRegular:
		return "f"
	case TypeDirectory:
		return "d"
	case TypeSymlink:
		return "l"
	default:
		return ""
	}
}

func (t EntryType) String() string {
	switch t {
	case TypeRegular:
		return "file"
	case TypeDirectory:
		return "dir"
	case TypeSymlink:
		return "symlink"
	case TypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// Hint is the cheap type indicator reported by a directory listing.
// Values match the d_type constants from dirent.h so the raw value can be
// printed as-is regardless of which backend produced it.
type Hint uint8

const (
	HintUnknown Hint = 0
	HintFIFO    Hint = 1
	HintChar    Hint = 2
	HintDir     Hint = 4
	HintBlock   Hint = 6
	HintRegular Hint = 8
	HintSymlink Hint = 10
	HintSocket  Hint = 12
)

// Type returns the entry type the hint stands for. HintUnknown and values
// outside the table map to TypeUnknown.
func (h Hint) Type() EntryType {
	switch h {
	case HintRegular:
		return TypeRegular
	case HintDir:
		return TypeDirectory
	case HintSymlink:
		return TypeSymlink
	case HintFIFO, HintChar, HintBlock, HintSocket:
		return TypeOther
	default:
		return TypeUnknown
	}
}

// HintFromMode derives a hint from mode bits, for listings that report a
// FileMode instead of a raw d_type.
func HintFromMode(mode fs.FileMode) Hint {
	switch {
	case mode&fs.ModeSymlink != 0:
		return HintSymlink
	case mode.IsDir():
		return HintDir
	case mode&fs.ModeNamedPipe != 0:
		return HintFIFO
	case mode&fs.ModeSocket != 0:
		return HintSocket
	case mode&fs.ModeCharDevice != 0:
		return HintChar
	case mode&fs.ModeDevice != 0:
		return HintBlock
	case mode.IsRegular():
		return HintRegular
	default:
		return HintUnknown
	}
}

// TypeFromMode classifies mode bits as returned by a non-following stat.
func TypeFromMode(mode fs.FileMode) EntryType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink
	case mode.IsDir():
		return TypeDirectory
	case mode.IsRegular():
		return TypeRegular
	default:
		return TypeOther
	}
}

// Classify decides an entry's type from the listing hint and the stat mode.
// A known hint is taken when it agrees with the mode; the mode wins when the
// hint is unknown or disagrees.
func Classify(hint Hint, mode fs.FileMode) EntryType {
	fromMode := TypeFromMode(mode)
	if ht := hint.Type(); ht != TypeUnknown && ht == fromMode {
		return ht
	}
	return fromMode
}

// HintAgrees reports whether a known hint matches the stat mode. Unknown
// hints always agree.
func HintAgrees(hint Hint, mode fs.FileMode) bool {
	ht := hint.Type()
	return ht == TypeUnknown || ht == TypeFromMode(mode)
}
