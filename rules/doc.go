// Package rules loads and compiles the rule lists that drive message
// scrubbing. A rule file is plain text with one rule per line. Lines are
// trimmed of surrounding whitespace and lines that are empty after trimming
// are ignored, so rule files may be padded with blank lines for readability.
//
// Three kinds of rule lists exist: text patterns applied to plain text parts,
// markup patterns applied to HTML parts, and CSS selectors applied to HTML
// parts. Patterns and selectors are compiled up front, before any message is
// touched, so a bad rule fails the run immediately rather than somewhere in
// the middle of a mailbox.
package rules
