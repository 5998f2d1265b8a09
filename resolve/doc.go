// Package resolve implements layered class-name resolution (spec §4.4,
// LayeredClassResolver) and the pure conflict-detection functions it is
// checked against before a layer stack is published (spec §4.2,
// ClassNameConflictAnalyzer).
package resolve
