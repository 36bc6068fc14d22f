// Package ifmerge splices a generated OVS bridge block into a hand-edited
// /etc/network/interfaces file.
//
// # Quick Start
//
// Merge with the default markers, anchor and orphan types:
//
//	merged := ifmerge.Merge(existing, fragment)
//	os.WriteFile("/etc/network/interfaces", []byte(merged), 0644)
//
// Merge never fails with the defaults: any input, including empty strings,
// produces a document with exactly one managed block. Running it again on
// its own output with the same fragment returns the output unchanged.
//
// # Merge Pipeline
//
// The merge runs these stages in order:
//
//  1. Block stripping: every span between a "# BEGIN OVS BRIDGES" line and
//     the next "# END OVS BRIDGES" line is removed
//  2. Orphan filtering: blank-line separated paragraphs declaring
//     "ovs_type OVSBridge" or "ovs_type OVSPort" are dropped
//  3. Insertion: the fragment, wrapped in the markers when needed, goes
//     before the first "source /etc/network/interfaces.d/" line or at EOF
//  4. Normalization: runs of blank lines collapse to one
//
// # Configuration
//
// Use functional options to customize the merger:
//
//	m, err := ifmerge.New(
//	    ifmerge.WithMarkers("# BEGIN VXLAN", "# END VXLAN"),
//	    ifmerge.WithOrphanTypes("OVSBridge", "OVSPort", "OVSIntPort"),
//	    ifmerge.WithStrict(true),
//	    ifmerge.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := m.Merge(existing, fragment)
//
// In strict mode, stray, nested or unterminated markers in the existing
// document make Merge return an error wrapping ErrMalformedBlock instead of
// being repaired.
//
// # Concurrency
//
// A Merger is immutable after New and safe for concurrent use. Concurrent
// merges writing the same target file are not coordinated: the last writer
// wins.
package ifmerge
