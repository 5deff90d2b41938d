package catalog

import "strings"

const upperhex = "0123456789ABCDEF"

// EscapeComponent кодирует строку так же, как encodeURIComponent в браузере:
// без изменений остаются только A-Z a-z 0-9 - _ . ! ~ * ' ( ), пробел становится %20.
// url.QueryEscape не подходит: он пишет "+" вместо пробела и кодирует ! ' ( ) *.
func EscapeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepInComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func keepInComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
