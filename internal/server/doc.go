// Package server exposes flowboard sessions over HTTP.
//
// Each board is loaded with PUT /boards/{name} and then edited through
// small JSON endpoints (node moves, category toggles, freeze, reset and the
// anchor drag lifecycle) or a websocket that streams re-routed scenes while
// an edge endpoint is dragged. Requests on one board are serialized by a
// per-board mutex; different boards proceed in parallel.
//
// Routes:
//
//	GET  /healthz
//	GET  /metrics
//	PUT  /boards/{name}
//	GET  /boards/{name}/scene
//	POST /boards/{name}/layout?strategy=
//	POST /boards/{name}/nodes/{id}/move
//	POST /boards/{name}/freeze
//	POST /boards/{name}/reset
//	POST /boards/{name}/categories/{id}/toggle
//	POST /boards/{name}/notes/toggle
//	PUT  /boards/{name}/viewport
//	POST /boards/{name}/fit
//	POST /boards/{name}/drag/{begin|move|end}
//	GET  /boards/{name}/ws
//	GET  /boards/{name}/export.svg
//
// Errors are JSON bodies {"error": ..., "code": ...} with the status from
// errors.HTTPStatus.
package server
