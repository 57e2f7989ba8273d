// Package pricefeed polls a remote imbalance/spot-price endpoint and turns
// its readings into GridOperatorSignal cost updates on a scenario.World's
// event queue, the way the teacher's modo.Client polls Modo's imbalance-price
// API and caches the result for the control loop to read.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/events"
	"github.com/cepro/spiceev/scenario"
	"github.com/google/go-querystring/query"
	"github.com/mitchellh/mapstructure"
)

// RequestParams is encoded onto the poll URL's query string via
// google/go-querystring, letting a provider-specific region/market
// selector travel with every poll request without this package needing to
// know the provider's exact query schema up front.
type RequestParams struct {
	Region string `url:"region,omitempty"`
	Market string `url:"market,omitempty"`
}

// Client polls a configured URL on an interval and, on every successful
// poll, enqueues a GridOperatorSignal onto the target World's event queue.
// It never touches World directly outside of Events.Add, preserving the
// stepper's single-threaded invariant (spec §5).
type Client struct {
	httpClient      *http.Client
	url             string
	gridConnectorID string
	params          RequestParams

	lock      sync.RWMutex
	lastPrice float64
	lastAt    time.Time

	logger *slog.Logger
}

// priceReading is the typed form of the price endpoint's response: a map of
// named fields that varies slightly by provider, decoded via mapstructure
// into priceReading the same way the teacher's acuvim2 client decodes a
// register-name-keyed map into a typed MeterReading.
type priceReading struct {
	PricePerMWh float64   `mapstructure:"price_per_mwh"`
	Time        time.Time `mapstructure:"time"`
}

// New returns a Client that will poll url and post GridOperatorSignal events
// for gridConnectorID onto w's event queue. params, if non-zero, is encoded
// onto every poll request's query string.
func New(httpClient *http.Client, url, gridConnectorID string, params RequestParams) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient:      httpClient,
		url:             url,
		gridConnectorID: gridConnectorID,
		params:          params,
		logger:          slog.Default(),
	}
}

// Run polls the endpoint every period until ctx is cancelled, feeding each
// successful reading into w's event queue as a GridOperatorSignal whose
// Start and Signal both equal the reading's reported time (the reading is
// already current, not a look-ahead forecast).
func (c *Client) Run(ctx context.Context, w *scenario.World, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.poll(w); err != nil {
				c.logger.Error("pricefeed poll failed", "error", err)
			}
		}
	}
}

func (c *Client) poll(w *scenario.World) error {
	reading, err := c.fetch()
	if err != nil {
		return err
	}

	priceGBPPerKWh := reading.PricePerMWh / 1000

	c.lock.Lock()
	c.lastPrice = priceGBPPerKWh
	c.lastAt = reading.Time
	c.lock.Unlock()

	w.Events.Add(&events.GridOperatorSignal{
		Base:            events.Base{Signal: reading.Time, Start: reading.Time},
		GridConnectorID: c.gridConnectorID,
		Cost:            components.FixedCost{Value: priceGBPPerKWh},
	})

	c.logger.Info("pricefeed updated", "gc", c.gridConnectorID, "price_gbp_per_kwh", priceGBPPerKWh, "time", reading.Time)
	return nil
}

// Last returns the most recently polled price (GBP/kWh) and its reported
// time, for callers that want the current value without waiting on Run.
func (c *Client) Last() (float64, time.Time) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.lastPrice, c.lastAt
}

func (c *Client) fetch() (priceReading, error) {
	requestURL, err := c.requestURL()
	if err != nil {
		return priceReading{}, fmt.Errorf("build price feed request url: %w", err)
	}

	resp, err := c.httpClient.Get(requestURL)
	if err != nil {
		return priceReading{}, fmt.Errorf("get price feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return priceReading{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return priceReading{}, fmt.Errorf("decode price feed body: %w", err)
	}

	var reading priceReading
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
		Result:     &reading,
	})
	if err != nil {
		return priceReading{}, fmt.Errorf("build price feed decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return priceReading{}, fmt.Errorf("decode price reading: %w", err)
	}

	return reading, nil
}

// requestURL appends c.params onto c.url's query string via go-querystring,
// preserving any query parameters already present in c.url.
func (c *Client) requestURL() (string, error) {
	values, err := query.Values(c.params)
	if err != nil {
		return "", fmt.Errorf("encode request params: %w", err)
	}
	if len(values) == 0 {
		return c.url, nil
	}

	parsed, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("parse price feed url: %w", err)
	}

	existing := parsed.Query()
	for key, vals := range values {
		for _, v := range vals {
			existing.Add(key, v)
		}
	}
	parsed.RawQuery = existing.Encode()

	return parsed.String(), nil
}
