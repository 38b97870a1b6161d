// Package session holds the live, mutable state of an open board.
//
// A [Session] wraps a read-only [board.Project] with everything a user
// changes while working on it: node positions, measured heights, hidden
// categories, the viewport, and the [Overrides] table of explicit edge
// anchors. Layout, routing and anchor resolution stay pure; the session
// feeds them a consistent snapshot and stores their results.
//
// A Session is not safe for concurrent use. Hosts that serve several
// clients serialize access per board.
//
// # Anchor drags
//
// Moving an edge endpoint is a three-step interaction:
//
//	if err := s.BeginAnchorDrag(ctx, edgeIndex, session.EndTo); err != nil {
//	    return err
//	}
//	scene, err := s.UpdateAnchorDrag(pointer) // once per pointer move
//	sides, err := s.EndAnchorDrag(ctx)        // commit on release
//
// Begin freezes the edge's currently resolved sides into the override table
// so the drag has a concrete starting point. Update snaps the dragged end to
// the nearest of the 16 anchors on that end's node. End persists the result
// through the commit hook. There is no cancel: releasing always commits.
//
// # Persistence
//
// The session checkpoints itself as a [State] through a [Store]:
//   - [MemoryStore]: in-process, for tests and the server's default
//   - [FileStore]: JSON files under ~/.config/flowboard/boards/
//   - [RedisStore]: shared state for multi-instance servers
//   - [MongoStore]: document storage
//
// A failing store is logged; the in-memory session is never rolled back.
package session
