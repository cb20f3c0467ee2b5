// Package io reads pedigree tables and writes analysis results.
//
// # Pedigree Format
//
// A pedigree is a whitespace-delimited text table with one header row and
// one individual per line. Only the first three columns are read:
//
//	Ind  Father  Mother  Sex
//	1    0       0       M
//	2    0       0       F
//	3    1       2       M
//
// A parent of 0 means unknown. Extra columns are ignored, blank lines are
// skipped, and everything after a '#' is a comment. Use [ReadPedigree] for
// any io.Reader or [ImportPedigree] for a file path; both return a
// validated [pedigree.Graph].
//
// Parse errors carry the offending line number and the INVALID_FORMAT
// code. Structural problems found while building the graph (duplicate
// individuals, unknown parents, cycles) carry MALFORMED_PEDIGREE.
//
// # Export
//
// [WritePedigree] writes a graph back in the same table format, so a
// pedigree survives a read/write round trip. [WriteJSON] and [ExportJSON]
// encode any result value (lineage distances, cones, climb reports) as
// indented JSON.
package io
