package httpcodec

// Header name bytes accepted by this codec: ALPHA, DIGIT, '-', '_'.
// This is a strict subset of RFC 7230's tchar (which also allows
// !#$%&'*+.^`|~) — see the "header name character class" open question
// in SPEC_FULL.md §10. IsHeaderNameByte is a standalone predicate so a caller
// needing the wider RFC class can pre-validate with their own table
// without forking the parser.
var validHeaderNameByteTable = func() [256]bool {
	var t [256]bool
	for c := 'a'; c <= 'z'; c++ {
		t[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	t['-'] = true
	t['_'] = true
	return t
}()

// Header value bytes accepted by this codec: visible ASCII, SP (0x20)
// through '~' (0x7E). Unlike RFC 7230's field-content this rejects
// HTAB and obs-text (0x80-0xFF); see §4.2 of SPEC_FULL.md.
var validHeaderValueByteTable = func() [256]bool {
	var t [256]bool
	for c := 0x20; c <= 0x7E; c++ {
		t[c] = true
	}
	return t
}()

// IsHeaderNameByte reports whether c is valid in a header name per the
// character class this codec implements.
func IsHeaderNameByte(c byte) bool {
	return validHeaderNameByteTable[c]
}

// IsHeaderValueByte reports whether c is valid in a header value per
// the character class this codec implements.
func IsHeaderValueByte(c byte) bool {
	return validHeaderValueByteTable[c]
}

// IsHeaderNameValid reports whether every byte of s is a valid header
// name byte and s is non-empty.
func IsHeaderNameValid(s []byte) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if !IsHeaderNameByte(c) {
			return false
		}
	}
	return true
}

// IsHeaderValueValid reports whether every byte of s is a valid header
// value byte. An empty value is valid.
func IsHeaderValueValid(s []byte) bool {
	for _, c := range s {
		if !IsHeaderValueByte(c) {
			return false
		}
	}
	return true
}

// equalFoldASCII performs an ASCII case-insensitive comparison of a
// and b, adapted from the teacher's caseInsensitiveCompare (cookie.go).
// Only letters are folded: 32 is added to upper-case ASCII bytes on
// both sides, and every other byte must match exactly.
func equalFoldASCII(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
