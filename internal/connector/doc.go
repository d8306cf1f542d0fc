// Package connector is the host-facing facade of the SPARQL data source.
//
// A reporting host drives the connector through three entry points:
//
//   - ValidateEndpoint probes an endpoint with a fixed SELECT and checks the
//     response is SPARQL JSON results.
//   - DescribeSchema hands back the user-declared column schema verbatim.
//   - FetchData prepares the user query for the requested date range and
//     page, runs it and converts the bindings into rows.
//
// PIPELINE:
//
//	FetchData
//	  -> schema.Cache.Index      (parse + index, once per schema text)
//	  -> query.Preparer.Prepare  (placeholders, LIMIT/OFFSET)
//	  -> endpoint.Client.Query   (HTTP POST, decode, shape check)
//	  -> translate.Translator    (empty detection, XSD conversion, defaults)
//
// Each call handles one host request synchronously. The only state shared
// across requests is the schema index cache, which is keyed by a hash of the
// schema text and guarded by a mutex.
//
// Errors are *connerr.Error values; those marked user-safe carry the
// connerr.UserSafePrefix so the host can show them to end users.
package connector
