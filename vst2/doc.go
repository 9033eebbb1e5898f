// Package vst2 finds vst2 plugins installed in the system and wraps them
// into graph nodes. Plugin hosting requires cgo and vst2 SDK headers, so
// processor is only built with vst2 build tag:
//
//	go build -tags vst2
package vst2
