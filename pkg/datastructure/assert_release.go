//go:build !graphdebug

package datastructure

// union mode checks are compiled in with -tags graphdebug.
func assertStopImpactMode(DirectedEdge) {}

func assertLineMode(DirectedEdge) {}
