// Package wire implements the Quassel DataStream wire codec: the
// fixed-width primitive encoding, the QVariant tagged-value envelope, and
// the process-wide type registry that resolves both built-in Qt type tags
// and application-level user type names.
//
// Every exported encode/decode pair is a pure function over a byte cursor;
// nothing in this package performs I/O.
package wire
