// Copyright © 2022-2026 RomeCore contributors

// Package ast implements the parsed-tree model described by spec §3/§4.6:
// the value-type ParsedRule node, a lazy view that computes text/value/
// children on demand, a precalculated view that materialises eagerly, tree
// optimization (collapsing single-child pass-throughs, dropping empty
// nodes), and incremental re-parse. Grounded on lr/sppf/forest.go's forest
// node model (there: a shared-packed-parse-forest over grammar symbols;
// here: a simpler tree since the PEG core has no ambiguity to pack) and on
// its ToGraphViz exporter for the debug dump.
package ast
