// Package pkg provides the core libraries for Treescope document tree
// visualization.
//
// # Overview
//
// Treescope turns hierarchical documents (YAML, JSON) into interactive tree
// visualizations: boxes sized to their content, laid out left-to-right by
// depth, connected by elbow links, and navigable through collapse, search,
// and camera movement. The pkg directory is organized into these areas:
//
//  1. [tree] - Domain logic (document shaping, layout, reconciliation, search)
//  2. [viewer] - Interactive command surface over one tree
//  3. [camera] - Pan/zoom/focus viewport transform
//  4. [snapshot] - Serialization and static export of laid-out trees
//  5. [store], [cache] - Persistence and layout caching backends
//  6. [server] - HTTP API over the store and engine
//
// # Architecture
//
// The typical data flow through Treescope:
//
//	YAML/JSON bytes
//	         ↓
//	    [document] package (ordered decode)
//	         ↓
//	    [tree] package (shape resolution + node graph)
//	         ↓
//	    [tree/layout] package (content-aware geometry)
//	         ↓
//	    [tree/reconcile] package (enter/update/exit transitions)
//	         ↓
//	    interactive viewer / JSON snapshot / SVG export
//
// # Quick Start
//
// Build and lay out a tree from a document:
//
//	import (
//	    "github.com/treescope/treescope/pkg/document"
//	    "github.com/treescope/treescope/pkg/tree"
//	    "github.com/treescope/treescope/pkg/tree/layout"
//	)
//
//	doc, err := document.Load("infra.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	t := tree.Build(doc)
//	res := layout.New(layout.DefaultConfig()).Layout(t)
//
// Or drive the full interactive surface:
//
//	v := viewer.New(viewer.Options{})
//	v.Rebuild(ctx, doc)
//	v.ToggleNode(ctx, id)
//	v.Search(ctx, "auth")
//
// # Stability
//
// Packages under pkg are intended for reuse; the cmd and internal trees are
// not part of the public surface.
package pkg
