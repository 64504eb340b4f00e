// Package scanner walks source text character by character and drives the
// interpreter with the annotation blocks it finds.
//
// Every byte is classified into one of four lexical modes (code, line comment,
// block comment, annotation block) plus the orthogonal preprocessor-line,
// string and character-literal flags. An annotation block opens with "/*#" and
// closes with "#*/"; its first non-blank line is "#macro <COMMAND>" or the
// bare command name. A code line starting with "#macro <COMMAND>" opens a
// block by itself. "/*##" and "/*#*" stay ordinary comments so banner
// comments are not mistaken for blocks.
//
// In ModeFull the scanner also records inline invocations: a known template
// name directly followed by a parenthesised argument list on a code line that
// is not a preprocessor line. ModeReplay only rebuilds state from blocks and is
// used on previously generated output.
package scanner
