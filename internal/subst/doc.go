// Package subst expands the three annotation tokens inside one line of text.
//
//	@        current file name, upper-cased, every other character mapped to '_'
//	#        current line number (never at position 0, where '#' starts a directive)
//	$x       value bound to letter x; left literal when x has no (or an empty) binding
//
// A line may start with the override prefix "@file:line$". The rest of that line
// is expanded as if it were written at file:line, and the override is reported
// back so callers can record it as the authoritative location.
//
// Expansion is a single left-to-right pass: substituted text is never rescanned.
package subst
