// Package pipeline turns a controller method into an http.Handler that runs
// the full request chain:
//
//  1. parameter materialization: extract, then pipes global → controller →
//     handler → parameter, then coercion to the declared type
//  2. guards global → controller → handler, short-circuiting with 403
//  3. interceptors global → controller → handler, folded so the first is
//     outermost, around the handler call
//  4. a non-nil result is sent as JSON
//  5. errors and panics from 1–3 go to filters handler → controller →
//     global; the first filter returning nil wins, else a built-in renderer
//     responds
//
// Enhancers are instances or *container.Class values; classes are resolved
// from the container as singletons.
package pipeline
