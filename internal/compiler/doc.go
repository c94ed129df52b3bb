// Package compiler turns configuration files into rule definitions.
//
// Two formats are supported. The line format has one rule per line:
//
//	<condition> => <command template>
//
// Blank lines, comment lines starting with "#" and lines without "=>" are
// ignored. A file whose name ends in ".cue" is read as a CUE document
// instead:
//
//	interval: "1s"
//	rules: [
//		{when: "lid_open == false", run: "notify-lock"},
//	]
//
// Conditions are parsed while compiling, so a malformed condition is
// reported before the loop starts.
package compiler
