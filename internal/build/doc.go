// Package build runs one complete bake of a site.
//
// Every execution path (kiln bake, the taste watch loop, tests) routes
// through BuildService. A run walks a fixed sequence of stages: prepare,
// discover, generate (before-processing transforms), render and publish
// (after-processing transforms). Each stage is timed and classified so the
// result and the metrics recorder agree on what happened.
package build
