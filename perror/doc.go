// Copyright © 2022-2026 RomeCore contributors

// Package perror implements the error-aggregation, stack/walk-trace and
// formatting subsystem described by spec §4.4/§4.5/§7: a per-Context
// accumulator that groups ParsingErrors by position, a formatter that
// renders the furthest groups with a caret-annotated source line (using
// pterm for optional colorization, mirroring terex/termr's use of pterm for
// diagnostic output), and the ParsingException surfaced when a parse call's
// top-level error_handling is Throw.
package perror
