// Package remoteresults optionally uploads a finished run's summary to a
// Supabase schema for dashboarding, the way the teacher's supabase.Client
// uploads telemetry readings — entirely optional, off by default, and never
// required for a simulation run to complete (§6A).
package remoteresults

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cepro/spiceev/report"
	supa "github.com/nedpals/supabase-go"
)

const uploadTimeout = 10 * time.Second

// Publisher uploads finished-run summaries to Supabase. It hides the
// underlying open-source client and adds lazy reconnection and a timeout,
// mirroring supabase.Client's own reconnect-on-error bookkeeping.
type Publisher struct {
	url     string
	anonKey string
	userKey string
	schema  string

	subClient       *supa.Client
	shouldReconnect bool
	logger          *slog.Logger
}

// New returns a Publisher targeting the given Supabase project/schema. The
// underlying client connects lazily on the first Publish call.
func New(url, anonKey, userKey, schema string) *Publisher {
	return &Publisher{
		url:             url,
		anonKey:         anonKey,
		userKey:         userKey,
		schema:          schema,
		shouldReconnect: true,
		logger:          slog.Default().With("host", url),
	}
}

// Publish uploads one run_summary row built from s. runID should uniquely
// identify the run (e.g. a scenario file name plus timestamp).
func (p *Publisher) Publish(runID string, finishedAt time.Time, s report.Summary) error {
	p.reconnectIfNecessary()

	row := newSupabaseRunSummary(runID, finishedAt, s)

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.subClient.DB.From("run_summary").Insert(row).Execute(nil)
	}()

	select {
	case <-time.After(uploadTimeout):
		p.setShouldReconnect()
		return errors.New("remoteresults: upload timed out")
	case err := <-errCh:
		if err != nil {
			p.setShouldReconnect()
			return fmt.Errorf("remoteresults: upload run summary: %w", err)
		}
		p.logger.Info("uploaded run summary", "run_id", runID)
		return nil
	}
}

func (p *Publisher) createSubClient() {
	subClient := supa.CreateClient(p.url, p.anonKey)
	subClient.DB.AddHeader("Accept-Profile", p.schema)
	subClient.DB.AddHeader("Content-Profile", p.schema)
	if p.userKey != "" {
		subClient.DB.AddHeader("Authorization", fmt.Sprintf("Bearer %s", p.userKey))
	}
	p.subClient = subClient
}

func (p *Publisher) setShouldReconnect() {
	p.shouldReconnect = true
}

func (p *Publisher) reconnectIfNecessary() {
	if !p.shouldReconnect {
		return
	}
	p.createSubClient()
	p.shouldReconnect = false
	p.logger.Info("created supabase client")
}
