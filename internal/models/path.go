package models

import (
	"strconv"
)

// RootPath addresses the whole document.
const RootPath Path = "$"

// Path locates a value inside a document for diagnostics, e.g. $.servers[2].name.
type Path string

// Key returns the path of the mapping entry key below p.
func (p Path) Key(key string) Path {
	if isPlainKey(key) {
		return p + "." + Path(key)
	}
	return p + "[" + Path(strconv.Quote(key)) + "]"
}

// Index returns the path of the i-th sequence element below p.
func (p Path) Index(i int) Path {
	return p + "[" + Path(strconv.Itoa(i)) + "]"
}

func (p Path) String() string { return string(p) }

func isPlainKey(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
