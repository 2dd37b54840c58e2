/*
Package iteratable implements iteratable container data structures.

Set is a special purpose set type, suitable mainly for implementing algorithms
around scanners, parsers, etc. These kinds of algorithms are often more
straightforward to describe as set constructions and operations. The LR
item-set construction in package lrtable is the main client.

Unusually, all set operations are destructive!

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2019–2026 The Yakka Project
*/
package iteratable
