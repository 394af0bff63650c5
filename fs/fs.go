// Package fs provides filesystem tools: read, write, edit, and glob.
//
// Each tool's schema is derived from its args struct via [relay.SchemaFor],
// so the manifest the model sees and the decoding the handler performs can
// never drift apart. Handlers report I/O failures as IsError results; they
// never abort the run.
package fs
