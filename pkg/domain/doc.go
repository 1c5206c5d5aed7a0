/*
Package domain contains the data model shared by the dialog compiler and its adapters.

It is kept free of I/O and of the XML tree representation so that sinks,
servers and presenters can depend on it without pulling in the compiler.

# Key Entities

  - Record: One flattened dialog node, serialized as a JSON object.
  - Kind: The resolved node type, matched exhaustively during lowering.
  - Diagnostic: A non-fatal finding (schema violation, missing jump target, ...).
  - Result: The ordered records plus the diagnostics of one compilation.
*/
package domain
