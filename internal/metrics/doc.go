// Package metrics provides build observability hooks for kiln.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so metrics stay optional without nil checks at call sites:
//
//	p := render.NewProcessor(fs, engine, md, render.WithRecorder(recorder))
//
// PrometheusRecorder backs the interface with client_golang collectors. Its
// registry can be exported to a node-exporter textfile after a bake or served
// over HTTP while `kiln taste` is running.
package metrics
