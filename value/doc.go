/*
Package value implements a small generic tagged value, used throughout the
engine and the AST layer to carry intermediate values and user-factory
results without resorting to reflection on user callbacks.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022–2026 RomeCore contributors

Adapted from the Atom type in github.com/npillmayer/gorgo/terex.
*/
package value
