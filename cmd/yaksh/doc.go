/*
Command yaksh is an interactive shell for experimenting with grammars.

It loads a Yacc grammar (or a built-in arithmetic demo grammar), builds the
LALR(1) tables, and then reads input lines, parses them and displays the
resulting value together with all diagnostics and the repair sequences the
error recovery proposes.

	yaksh [-grammar file.y] [-trace Debug|Info|Error]

Shell commands start with a colon: :grammar lists the rules, :conflicts
shows the conflict report, :states the size of the state machine, :quit
exits.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2019–2026 The Yakka Project
*/
package main
