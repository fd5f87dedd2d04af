// ABOUTME: Alarm clock support for a Player
// ABOUTME: Parses alarms_loop entries and renders LMS tag:value parameters
package squeezebox

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rajlaud/squeezebox-go/pkg/slimrpc"
)

// Alarm is one alarm clock configured on a player. Times are offsets from
// midnight in the player's local time; Days uses 0 for Sunday through 6 for
// Saturday.
type Alarm struct {
	ID      string
	Time    time.Duration
	Days    []int
	Enabled bool
	Repeat  bool

	// Volume is the alarm volume, 1..100. Zero means the server's default
	// alarm volume.
	Volume int

	// URL is the alarm playlist. Empty means the current playlist.
	URL string
}

// params renders the alarm as the tag:value parameter list the alarm command
// expects.
func (a Alarm) params() []string {
	out := []string{
		fmt.Sprintf("time:%d", int(a.Time.Seconds())),
		fmt.Sprintf("enabled:%s", boolParam(a.Enabled)),
		fmt.Sprintf("repeat:%s", boolParam(a.Repeat)),
	}
	if len(a.Days) > 0 {
		days := make([]string, len(a.Days))
		for i, d := range a.Days {
			days[i] = strconv.Itoa(d)
		}
		out = append(out, "dow:"+strings.Join(days, ","))
	}
	if a.Volume > 0 {
		out = append(out, fmt.Sprintf("volume:%d", a.Volume))
	}
	if a.URL != "" {
		out = append(out, "url:"+a.URL)
	}
	return out
}

// parseAlarms extracts the alarms from an "alarms" query result.
func parseAlarms(data slimrpc.Result) []Alarm {
	loop, ok := data.Maps("alarms_loop")
	if !ok {
		return nil
	}
	alarms := make([]Alarm, 0, len(loop))
	for _, entry := range loop {
		var a Alarm
		a.ID, _ = entry.String("id")
		a.URL, _ = entry.String("url")
		if seconds, ok := entry.Int("time"); ok {
			a.Time = time.Duration(seconds) * time.Second
		}
		if enabled, ok := entry.String("enabled"); ok {
			a.Enabled = enabled == "1"
		}
		if repeat, ok := entry.String("repeat"); ok {
			a.Repeat = repeat == "1"
		}
		a.Volume, _ = entry.Int("volume")
		if dow, ok := entry.String("dow"); ok && dow != "" {
			for _, d := range strings.Split(dow, ",") {
				day, err := strconv.Atoi(d)
				if err != nil {
					continue
				}
				a.Days = append(a.Days, day)
			}
		}
		alarms = append(alarms, a)
	}
	return alarms
}

// AddAlarm creates a new alarm on this player and returns its ID. Days
// defaults to every day of the week when empty, matching the server.
func (p *Player) AddAlarm(ctx context.Context, alarm Alarm) (string, error) {
	query := append([]string{"alarm", "add"}, alarm.params()...)
	result, err := p.Query(ctx, query...)
	if err != nil {
		return "", fmt.Errorf("adding alarm: %w", err)
	}
	id, ok := result.String("id")
	if !ok {
		return "", fmt.Errorf("adding alarm: %w: missing id", slimrpc.ErrInvalidResponse)
	}
	return id, nil
}

// UpdateAlarm replaces the settings of an existing alarm. The full alarm is
// sent; fields left at their zero values fall back to server defaults.
func (p *Player) UpdateAlarm(ctx context.Context, id string, alarm Alarm) error {
	if id == "" {
		return fmt.Errorf("squeezebox: UpdateAlarm called without an alarm ID")
	}
	query := append([]string{"alarm", "update"}, alarm.params()...)
	query = append(query, "id:"+id)
	if _, err := p.Query(ctx, query...); err != nil {
		return fmt.Errorf("updating alarm %s: %w", id, err)
	}
	return nil
}

// DeleteAlarm removes an alarm from this player.
func (p *Player) DeleteAlarm(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("squeezebox: DeleteAlarm called without an alarm ID")
	}
	if _, err := p.Query(ctx, "alarm", "delete", "id:"+id); err != nil {
		return fmt.Errorf("deleting alarm %s: %w", id, err)
	}
	return nil
}

// SetAlarmsEnabled enables or disables all alarms on this player.
func (p *Player) SetAlarmsEnabled(ctx context.Context, enabled bool) error {
	return p.Command(ctx, "playerpref", "alarmsEnabled", boolParam(enabled))
}
