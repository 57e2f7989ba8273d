// Package schedulesource polls a remote fleet/schedule API and turns each
// new schedule into ScheduleUpdate events on a scenario.World's event queue,
// the way the teacher's axle.Axle polls Axle for a control schedule and
// forwards it down a channel only when it actually changed.
package schedulesource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/cepro/spiceev/events"
	"github.com/cepro/spiceev/scenario"
	"github.com/mitchellh/mapstructure"
)

// Item is one externally-declared per-vehicle or per-GC power target, the
// schedule-feed analogue of axle.ScheduleAction.
type Item struct {
	Target    string    `mapstructure:"target"`     // vehicle id or grid connector id
	IsVehicle bool      `mapstructure:"is_vehicle"`
	StartTime time.Time `mapstructure:"start_time"`
	PowerKW   float64   `mapstructure:"power_kw"`
}

// Client polls url on an interval and, whenever the returned schedule
// differs from the last one seen, enqueues one ScheduleUpdate event per Item.
type Client struct {
	httpClient *http.Client
	url        string

	latest []Item
	logger *slog.Logger
}

// New returns a Client that polls url for schedule updates.
func New(httpClient *http.Client, url string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, url: url, logger: slog.Default()}
}

// Run polls the endpoint every period until ctx is cancelled, enqueuing
// ScheduleUpdate events onto w whenever the fetched schedule changed.
func (c *Client) Run(ctx context.Context, w *scenario.World, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	if err := c.poll(w); err != nil {
		c.logger.Error("schedulesource initial poll failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.poll(w); err != nil {
				c.logger.Error("schedulesource poll failed", "error", err)
			}
		}
	}
}

func (c *Client) poll(w *scenario.World) error {
	items, err := c.fetch()
	if err != nil {
		return err
	}

	if reflect.DeepEqual(items, c.latest) {
		c.logger.Info("schedulesource polled, schedule unchanged")
		return nil
	}
	c.latest = items

	for _, item := range items {
		base := events.Base{Signal: item.StartTime, Start: item.StartTime}
		if item.IsVehicle {
			w.Events.Add(&events.ScheduleUpdate{Base: base, VehicleID: item.Target, PowerKW: item.PowerKW})
		} else {
			w.Events.Add(&events.ScheduleUpdate{Base: base, GridConnectorID: item.Target, PowerKW: item.PowerKW})
		}
	}
	c.logger.Info("schedulesource updated schedule", "items", len(items))
	return nil
}

func (c *Client) fetch() ([]Item, error) {
	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("get schedule feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode schedule feed body: %w", err)
	}

	var items []Item
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
		Result:     &items,
	})
	if err != nil {
		return nil, fmt.Errorf("build schedule feed decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode schedule items: %w", err)
	}

	return items, nil
}
