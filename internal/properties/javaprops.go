package properties

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	javaprops "github.com/magiconair/properties"
)

// propertiesLoader reads the java.util.Properties line format. Values are taken
// verbatim: "${...}" is not expanded, so encrypted values and Spring
// placeholders pass through untouched.
var propertiesLoader = javaprops.Loader{Encoding: javaprops.UTF8, DisableExpansion: true}

func parseProperties(r io.Reader) (Map, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties: %w", err)
	}
	p, err := propertiesLoader.LoadBytes([]byte(joinSurrogates(string(buf))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse properties: %w", err)
	}
	return Map(p.Map()), nil
}

// joinSurrogates replaces escaped UTF-16 surrogate pairs such as
// "\uD83D\uDE00" with the character they encode. Single \uXXXX escapes
// are left to the parser, which decodes them one rune at a time.
func joinSurrogates(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		if s[i+1] == 'u' {
			if r, ok := surrogatePair(s[i:]); ok {
				b.WriteRune(r)
				i += 11
				continue
			}
		}
		// Copy the escape whole so that "\\u" stays an escaped backslash.
		b.WriteString(s[i : i+2])
		i++
	}
	return b.String()
}

func surrogatePair(s string) (rune, bool) {
	if len(s) < 12 || s[6:8] != `\u` {
		return 0, false
	}
	hi, err1 := strconv.ParseUint(s[2:6], 16, 16)
	lo, err2 := strconv.ParseUint(s[8:12], 16, 16)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	r := utf16.DecodeRune(rune(hi), rune(lo))
	return r, r != unicode.ReplacementChar
}
