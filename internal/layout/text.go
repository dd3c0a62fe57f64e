package layout

import "unicode/utf8"

// CharCount counts the code points of s as given. Text is stored and
// counted without normalisation, so "é" is two characters.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}
