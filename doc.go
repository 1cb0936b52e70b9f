/*
Package rcparsing is a scannerless, PEG-style parser-construction library.

A grammar is assembled with a Builder (package grammar) out of rules and
tokens, then compiled once into an immutable Parser. This package wires the
built Parser together with the rule/token interpreter (package engine), the
lazy AST (package ast) and the error model (package perror) behind a small
public surface: Parse, TryMatchToken, MatchesToken and FindAllMatches.

There is no separate lexer phase: tokens are matched directly against the
input at whatever cursor position a rule needs them, optionally bounded by
pre-scanned barrier tokens (indentation, or any other regex-defined marker).
*/
package rcparsing
