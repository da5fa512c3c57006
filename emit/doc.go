// Package emit writes the result of a generation: a C source file holding
// every data array, the header declaring them, and an optional CBOR manifest
// for tools that load the assets without a C compiler.
package emit
