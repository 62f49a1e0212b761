// Package conduit maps declarative HTTP endpoints onto executable request
// pipelines. An endpoint is declared as a route pattern, a handler function,
// and one descriptor per parameter; Resolve decides ahead of any request
// where each parameter's value comes from (path, query, header, body,
// service registry, or a custom binder) and synthesizes an immutable
// EndpointPlan. Executing the plan binds, converts, and validates every
// parameter, invokes the handler through an optional filter chain, and
// serializes the result.
//
//	sig := conduit.MustSignature(
//		func(id int, page *int, body CreateNote) (*conduit.Response, error) {
//			...
//		},
//		conduit.Param("id"),
//		conduit.Param("page", conduit.Default(1)),
//		conduit.Param("body"),
//	)
//	plan, err := conduit.Resolve(sig, conduit.MustParsePattern("/notes/{id:int}"), services)
//
// Missing required values and failed conversions short-circuit the request
// with a 400 before the handler runs; unresolvable services and broken
// binder implementations surface as errors to the hosting framework instead.
// Plans are safe for concurrent reuse across requests.
package conduit
