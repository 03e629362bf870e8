package main

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
)

const sectionSign = '§'

// signComponent is the subset of Minecraft's JSON text component the sign
// renderer needs. Style attributes are discarded on purpose; nested extra
// below one level does not occur on signs.
type signComponent struct {
	Text  string          `json:"text"`
	Extra []signComponent `json:"extra"`
}

// renderSignLine turns one stored sign line into display text. Legacy
// worlds store the line verbatim; everything newer stores a JSON component
// whose root text and extra texts are concatenated. A line that fails to
// parse degrades to an empty string so the other lines still come through.
func renderSignLine(version WorldVersion, line string) string {
	if version.Name == "old" {
		return line
	}

	var component signComponent
	if err := json.Unmarshal([]byte(line), &component); err != nil {
		logrus.Warnf("malformed sign text %q: %v", line, err)
		return ""
	}
	if len(component.Extra) == 0 {
		return component.Text
	}

	var sb strings.Builder
	sb.WriteString(component.Text)
	for _, extra := range component.Extra {
		sb.WriteString(extra.Text)
	}
	return sb.String()
}

// stripFormatting removes section-sign escapes from book pages: § followed
// by a formatting character drops both, a bare § drops alone. None of the
// formatting is preserved in the output.
func stripFormatting(page string) string {
	if !strings.ContainsRune(page, sectionSign) {
		return page
	}

	runes := []rune(page)
	var sb strings.Builder
	sb.Grow(len(page))
	for i := 0; i < len(runes); i++ {
		if runes[i] != sectionSign {
			sb.WriteRune(runes[i])
			continue
		}
		if i+1 < len(runes) && isFormattingCode(runes[i+1]) {
			i++
		}
	}
	return sb.String()
}

// k: obfuscated, l: bold, m: strikethrough, n: underline, o: italic,
// r: reset, 0-9 and a-f: colors. Either case counts.
func isFormattingCode(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		return true
	}
	switch r {
	case 'k', 'l', 'm', 'n', 'o', 'r', 'K', 'L', 'M', 'N', 'O', 'R':
		return true
	}
	return false
}
