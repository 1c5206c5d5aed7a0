/*
Package ports defines the driven ports (interfaces) of the dialog compiler.

These interfaces decouple the compiler from configuration sources, schema
engines and artifact storage, so the same pipeline runs from the CLI, the HTTP
service and the MCP server.

# Key Interfaces

  - ConfigLookup: Resolves named configuration values for import placeholders.
  - SchemaValidator: Validates XML fragments; violations are warnings.
  - ArtifactSink: Receives the compiled JSON (file, redis, object storage).
*/
package ports
