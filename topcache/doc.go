// Package topcache implements the compile-on-demand cache for sources that
// are not part of any static layer: the "top cache" of spec §4.3.
//
// Entries are keyed by source id and are weak-valued (via the standard
// library's weak package) so a Code that no caller still references can be
// collected; a miss on a weakly-dropped entry is equivalent to "absent" and
// triggers a recompile. Compiles for a given source id are single-flighted
// with golang.org/x/sync/singleflight so N concurrent callers for the same
// id share one compile.
package topcache
