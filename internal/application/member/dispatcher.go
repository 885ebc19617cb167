package member

import (
	"context"
	"log"
	"sync"
	"time"

	domain "github.com/coopworks/member-import/internal/domain/member"
)

// Delivery pairs one activation record with the channel chosen for it.
type Delivery struct {
	Record  domain.ActivationRecord
	Channel domain.Channel
}

// DispatcherConfig tunes the notification fan-out. Zero values fall back to
// the defaults applied in NewDispatcher.
type DispatcherConfig struct {
	Workers          int
	CredentialTTL    time.Duration
	CredentialLength int
}

type dispatchRecordRepo interface {
	Update(ctx context.Context, record *domain.ActivationRecord) error
}

type dispatchJobRepo interface {
	IncrementNotificationCounter(ctx context.Context, jobID string, outcome domain.NotificationOutcome) error
}

// Dispatcher fans credential deliveries out to the notifier without blocking
// the commit response. Each delivery updates only its own record; the job
// counters are atomic increments, so concurrent outcomes for the same job
// never clobber each other.
type Dispatcher struct {
	records  dispatchRecordRepo
	jobs     dispatchJobRepo
	notifier domain.Notifier
	cfg      DispatcherConfig

	sem chan struct{}
	wg  sync.WaitGroup
}

func NewDispatcher(records dispatchRecordRepo, jobs dispatchJobRepo, notifier domain.Notifier, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.CredentialTTL <= 0 {
		cfg.CredentialTTL = 24 * time.Hour
	}
	if cfg.CredentialLength <= 0 {
		cfg.CredentialLength = defaultCredentialLength
	}

	return &Dispatcher{
		records:  records,
		jobs:     jobs,
		notifier: notifier,
		cfg:      cfg,
		sem:      make(chan struct{}, cfg.Workers),
	}
}

// Dispatch launches one bounded goroutine per delivery and returns
// immediately. Outcomes resolve asynchronously; call Wait during shutdown to
// drain in-flight sends.
func (d *Dispatcher) Dispatch(ctx context.Context, deliveries []Delivery) {
	for _, delivery := range deliveries {
		d.wg.Add(1)
		go func(delivery Delivery) {
			defer d.wg.Done()

			d.sem <- struct{}{}
			defer func() { <-d.sem }()

			record := delivery.Record
			if _, err := d.Deliver(ctx, &record, delivery.Channel); err != nil {
				log.Printf("[dispatch] delivery for record %s failed: %v", record.ID, err)
			}
		}(delivery)
	}
}

// Wait blocks until every in-flight delivery has resolved.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Deliver performs one credential delivery synchronously: generate a
// temporary password, send it, apply the state transition, and bump the
// owning job's counter. The returned bool reports whether the provider
// accepted the send; the error covers everything else (persistence,
// generation, missing destination).
func (d *Dispatcher) Deliver(ctx context.Context, record *domain.ActivationRecord, channel domain.Channel) (bool, error) {
	destination, err := record.Destination(channel)
	if err != nil {
		return false, err
	}

	credential, err := newTemporaryPassword(d.cfg.CredentialLength)
	if err != nil {
		return false, err
	}

	sendErr := d.notifier.Send(ctx, channel, destination, credential)
	now := time.Now().UTC()

	if sendErr != nil {
		log.Printf("[dispatch] %s send to record %s failed: %v", channel, record.ID, sendErr)
		if err := record.MarkDeliveryFailed(channel); err != nil {
			return false, err
		}
	} else {
		if err := record.MarkDelivered(channel, now, now.Add(d.cfg.CredentialTTL)); err != nil {
			return false, err
		}
	}

	if err := d.records.Update(ctx, record); err != nil {
		return sendErr == nil, err
	}
	if err := d.jobs.IncrementNotificationCounter(ctx, record.ImportJobID, domain.OutcomeFor(channel, sendErr == nil)); err != nil {
		return sendErr == nil, err
	}

	return sendErr == nil, nil
}
