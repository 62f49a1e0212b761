package conduit

// RequestBinder is the custom extraction protocol. A parameter whose type
// implements it (directly or via its pointer type) is bound by instantiating
// a fresh value and calling BindRequest against the request context, instead
// of being parsed from a single raw value.
//
// BindRequest returns ErrNoBindingValue when the request carries nothing to
// bind: a required parameter then short-circuits the request with a 400,
// while a nilable one is bound to nil. Any other error is treated as a
// defect in the binder implementation and propagates out of the pipeline
// unconverted.
//
// Example:
//
//	type Referer struct{ URL string }
//
//	func (r *Referer) BindRequest(rc conduit.RequestContext) error {
//		raw := rc.Request().Header("Referer")
//		if raw == "" {
//			return conduit.ErrNoBindingValue
//		}
//		r.URL = raw
//		return nil
//	}
type RequestBinder interface {
	BindRequest(rc RequestContext) error
}
