// ABOUTME: High-level Squeezebox control API
// ABOUTME: Provides Server and Player facades over the LMS JSON-RPC protocol
// Package squeezebox controls Logitech Media Server players.
//
// A Server represents one LMS instance and enumerates the Players connected
// to it. A Player mirrors one playback device: Update fetches a status
// snapshot, the getters read it, and the command methods fire one-shot
// playback commands. Commands are not verified against the player's state;
// call Update afterwards to observe the effect.
//
// The HTTP session is supplied by the host application and shared by the
// Server and every Player it creates. The library never closes it.
//
// Example:
//
//	lms := squeezebox.NewServer(http.DefaultClient, squeezebox.Config{Host: "192.168.1.2"})
//	player, err := lms.PlayerByName(ctx, "Bedroom")
//	err = player.Update(ctx)
//	fmt.Println(player.Volume())
//
// For the wire protocol itself, see the slimrpc package.
package squeezebox
