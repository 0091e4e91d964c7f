// Package escape makes arbitrary text safe to embed inside a double-quoted
// string literal of a command-line scripting shell.
//
// Each escaper works in a single left-to-right pass, so an escape character
// it inserts is never itself re-escaped and cannot pair with a following
// metacharacter in the input.
package escape

import "strings"

// powerShellReplacer prefixes PowerShell's escape character, the variable
// sigil and every character PowerShell accepts as a double-quote delimiter
// with a backtick.
var powerShellReplacer = strings.NewReplacer(
	"`", "``",
	"$", "`$",
	`"`, "`\"",
	"“", "`“",
	"”", "`”",
	"„", "`„",
)

// posixReplacer prefixes the four characters that stay special inside a
// POSIX sh double-quoted string with a backslash.
var posixReplacer = strings.NewReplacer(
	`\`, `\\`,
	"$", `\$`,
	"`", "\\`",
	`"`, `\"`,
)

// PowerShell escapes text for embedding between double quotes in a
// PowerShell script.
func PowerShell(text string) string {
	return powerShellReplacer.Replace(text)
}

// POSIX escapes text for embedding between double quotes in a POSIX sh
// command line.
func POSIX(text string) string {
	return posixReplacer.Replace(text)
}

// PowerShellQuoted returns text escaped and wrapped in double quotes.
func PowerShellQuoted(text string) string {
	return `"` + PowerShell(text) + `"`
}

// POSIXQuoted returns text escaped and wrapped in double quotes.
func POSIXQuoted(text string) string {
	return `"` + POSIX(text) + `"`
}
