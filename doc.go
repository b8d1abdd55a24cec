// Package sortagg contains the core components of a sort-partition-aggregate kernel for
// immutable, columnar Blocks. This root package defines the types which are employed by
// the kernel's operations (see the operations package), by table backends which store
// Block data (see the table package), and by distribution collaborators which execute
// independent units of work (see the dispatch and cluster packages).
package sortagg
