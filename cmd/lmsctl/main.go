// ABOUTME: Entry point for the lmsctl command line tool
// ABOUTME: Parses CLI flags and dispatches player subcommands
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/rajlaud/squeezebox-go/internal/artwork"
	"github.com/rajlaud/squeezebox-go/internal/version"
	"github.com/rajlaud/squeezebox-go/pkg/squeezebox"
)

var (
	host        = flag.StringP("host", "H", "", "LMS host name or address")
	port        = flag.IntP("port", "p", 0, "LMS HTTP port (default 9000)")
	playerName  = flag.StringP("player", "P", "", "Player name or ID the command targets")
	configPath  = flag.StringP("config", "c", "", "Config file path (default ~/.config/lmsctl/config.toml)")
	timeout     = flag.DurationP("timeout", "t", 10*time.Second, "Request timeout")
	https       = flag.Bool("https", false, "Connect over HTTPS")
	verbose     = flag.BoolP("verbose", "v", false, "Log requests to stderr")
	showVersion = flag.Bool("version", false, "Print the version and exit")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: lmsctl [flags] <command> [args]

Commands:
  players              List the players known to the server
  status               Show the target player's playback state
  play                 Start playback
  pause                Pause playback
  stop                 Stop playback
  next                 Skip to the next track
  prev                 Return to the previous track
  volume <level|±n>    Set or adjust the volume
  art [file]           Fetch the current track's cover art

Flags:
%s`, flag.CommandLine.FlagUsages())
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}
	log.SetFlags(0)
	if !*verbose {
		log.SetOutput(nopWriter{})
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatalf("lmsctl: %v", err)
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *https {
		cfg.HTTPS = true
	}
	if *playerName != "" {
		cfg.Player = *playerName
	}
	if cfg.Host == "" {
		fatalf("lmsctl: no LMS host configured; pass --host or set one in the config file")
	}

	server := squeezebox.NewServer(nil, squeezebox.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		HTTPS:    cfg.HTTPS,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, server, cfg, args[0], args[1:]); err != nil {
		fatalf("lmsctl: %v", err)
	}
}

func run(ctx context.Context, server *squeezebox.Server, cfg config, command string, args []string) error {
	switch command {
	case "players":
		return listPlayers(ctx, server)
	case "status":
		player, err := targetPlayer(ctx, server, cfg)
		if err != nil {
			return err
		}
		return showStatus(ctx, player)
	case "play", "pause", "stop", "next", "prev":
		player, err := targetPlayer(ctx, server, cfg)
		if err != nil {
			return err
		}
		return transport(ctx, player, command)
	case "volume":
		if len(args) != 1 {
			return fmt.Errorf("volume takes one argument, e.g. 40, +5, or -5")
		}
		player, err := targetPlayer(ctx, server, cfg)
		if err != nil {
			return err
		}
		return setVolume(ctx, player, args[0])
	case "art":
		player, err := targetPlayer(ctx, server, cfg)
		if err != nil {
			return err
		}
		var dest string
		if len(args) > 0 {
			dest = args[0]
		}
		return fetchArt(ctx, player, dest)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// targetPlayer resolves the configured player by name first, then by ID.
func targetPlayer(ctx context.Context, server *squeezebox.Server, cfg config) (*squeezebox.Player, error) {
	if cfg.Player == "" {
		return nil, fmt.Errorf("no player selected; pass --player or set one in the config file")
	}
	player, err := server.PlayerByName(ctx, cfg.Player)
	if err != nil {
		return nil, err
	}
	if player == nil {
		player, err = server.PlayerByID(ctx, cfg.Player)
		if err != nil {
			return nil, err
		}
	}
	if player == nil {
		return nil, fmt.Errorf("no player named %q", cfg.Player)
	}
	return player, nil
}

func listPlayers(ctx context.Context, server *squeezebox.Server) error {
	players, err := server.Players(ctx, "")
	if err != nil {
		return err
	}
	if len(players) == 0 {
		fmt.Println("no players connected")
		return nil
	}
	for _, p := range players {
		fmt.Printf("%-20s %-18s %s\n", p.Name(), p.ID(), p.Model())
	}
	return nil
}

func showStatus(ctx context.Context, player *squeezebox.Player) error {
	if err := player.Update(ctx); err != nil {
		return err
	}

	state := player.Mode()
	if !player.Power() {
		state = "off"
	}
	fmt.Printf("%s: %s, volume %d", player.Name(), state, player.Volume())
	if player.Muting() {
		fmt.Print(" (muted)")
	}
	fmt.Println()

	track := player.CurrentTrack()
	if track == nil {
		return nil
	}
	title := track.Title
	if title == "" {
		title = player.CurrentTitle()
	}
	fmt.Printf("  %s", title)
	if track.Artist != "" {
		fmt.Printf(" / %s", track.Artist)
	}
	if track.Album != "" {
		fmt.Printf(" / %s", track.Album)
	}
	fmt.Println()
	if player.Duration() > 0 {
		fmt.Printf("  %s of %s\n", clock(player.Position()), clock(player.Duration()))
	}
	return nil
}

func transport(ctx context.Context, player *squeezebox.Player, command string) error {
	switch command {
	case "play":
		return player.Play(ctx)
	case "pause":
		return player.Pause(ctx)
	case "stop":
		return player.Stop(ctx)
	case "next":
		return player.Next(ctx)
	case "prev":
		return player.Previous(ctx)
	}
	return fmt.Errorf("unknown transport command %q", command)
}

func setVolume(ctx context.Context, player *squeezebox.Player, arg string) error {
	relative := strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-")
	value, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid volume %q", arg)
	}
	if relative {
		return player.ChangeVolume(ctx, value)
	}
	return player.SetVolume(ctx, value)
}

func fetchArt(ctx context.Context, player *squeezebox.Player, dest string) error {
	if err := player.Update(ctx); err != nil {
		return err
	}

	fetcher, err := artwork.NewFetcher(nil, "")
	if err != nil {
		return err
	}
	path, err := fetcher.Fetch(ctx, player.ImageURL())
	if err != nil {
		return err
	}

	if dest != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
		path = dest
	}
	fmt.Println(path)
	return nil
}

// clock formats a duration as m:ss for track positions.
func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
