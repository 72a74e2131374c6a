package crash

import "strings"

// Demangle shortens a Go linker symbol to package.Name form: the import
// path is dropped and %xx escapes are decoded. Receivers and generic shape
// markers are kept. It reports false for an empty symbol.
func Demangle(sym string) (string, bool) {
	b, ok := appendDemangled(nil, sym)
	return string(b), ok
}

// appendDemangled appends the demangled form of sym to b.
func appendDemangled(b []byte, sym string) ([]byte, bool) {
	if sym == "" {
		return b, false
	}
	// The import path ends at the last slash before any receiver or type list.
	end := len(sym)
	if i := strings.IndexAny(sym, "(["); i >= 0 {
		end = i
	}
	short := sym
	if i := strings.LastIndex(sym[:end], "/"); i >= 0 {
		short = sym[i+1:]
	}
	for i := 0; i < len(short); i++ {
		c := short[i]
		if c == '%' && i+2 < len(short) {
			hi, okHi := unhex(short[i+1])
			lo, okLo := unhex(short[i+2])
			if okHi && okLo {
				b = append(b, hi<<4|lo)
				i += 2
				continue
			}
		}
		b = append(b, c)
	}
	return b, true
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
