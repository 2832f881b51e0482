package metadata

import "strings"

// punctReplacer maps typographic Unicode punctuation to ASCII
// equivalents so tags compare and export consistently.
var punctReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", "'", // low single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"„", `"`, // low double quote
	"‐", "-", // hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"…", "...", // ellipsis
	" ", " ", // no-break space
	"′", "'", // prime
	"″", `"`, // double prime
)

// NormalizePunctuation converts typographic punctuation to its ASCII
// form. Used with ApplyFunc when punctuation normalization is enabled.
func NormalizePunctuation(s string) string {
	return punctReplacer.Replace(s)
}
