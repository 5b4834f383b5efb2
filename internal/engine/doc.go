// Package engine converts messy tabular allocation exports into canonical
// allocation entries.
//
// Third-party retail systems export allocations with no fixed column layout:
// headers are renamed, reordered, or missing, files are concatenated with
// repeated header rows, and store/item identifiers arrive as loose aliases.
// The engine infers which column plays which role (store, item, quantity,
// description), drops echoed header rows and zero-quantity rows, and resolves
// raw tokens against two reference catalogs (items and stores) to produce a
// deterministic, sorted entry list.
//
// The package is pure: it consumes already-read file bytes and in-memory
// catalog snapshots, performs no I/O of its own, and treats the catalogs as
// immutable for the duration of a run. Row-level anomalies are absorbed into
// counters rather than raised as errors; only an unreadable source fails.
package engine
