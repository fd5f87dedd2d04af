// ABOUTME: LMS JSON-RPC wire protocol package
// ABOUTME: Defines request framing and the HTTP client for /jsonrpc.js
// Package slimrpc implements the Logitech Media Server JSON-RPC wire protocol.
//
// LMS exposes a single HTTP endpoint, /jsonrpc.js, that accepts POSTed
// "slim.request" frames. A frame targets a player (by player ID, or blank for
// server-wide commands) and carries the command vector as an array of strings:
//
//	{"id": "...", "method": "slim.request", "params": ["00:11:22:33:44:55", ["mixer", "volume", "50"]]}
//
// The server answers with a JSON object whose "result" member this package
// returns as a Result map. The HTTP session is supplied and owned by the
// caller; the client never creates, pools, or closes connections itself.
//
// Example:
//
//	client := slimrpc.NewClient(http.DefaultClient, slimrpc.Config{Host: "192.168.1.2"})
//	res, err := client.Query(ctx, "", "serverstatus", "0", "99")
package slimrpc
