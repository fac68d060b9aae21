//go:build graphdebug

package datastructure

import "fmt"

func assertStopImpactMode(e DirectedEdge) {
	if e.IsTransitLine() {
		panic(fmt.Sprintf("directed edge: stop impact read on transit line edge (use=%s)", e.Use()))
	}
}

func assertLineMode(e DirectedEdge) {
	if !e.IsTransitLine() {
		panic(fmt.Sprintf("directed edge: line id read on non transit edge (use=%s)", e.Use()))
	}
}
