package member_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	app "github.com/coopworks/member-import/internal/application/member"
	domain "github.com/coopworks/member-import/internal/domain/member"
)

func pendingRecord(id, memberID string) domain.ActivationRecord {
	return domain.ActivationRecord{
		ID:               id,
		ImportJobID:      "job-1",
		MemberID:         memberID,
		Name:             "Jane Doe",
		PhoneNumber:      "5551234567",
		Email:            "jane@x.com",
		ActivationStatus: domain.StatusPendingActivation,
	}
}

func TestDeliverSuccessRefreshesExpiry(t *testing.T) {
	t.Parallel()

	jobs := &fakeCounterJobRepo{}
	notifier := &fakeNotifier{}
	store := &fakeRecordStore{}
	dispatcher := app.NewDispatcher(store, jobs, notifier, app.DispatcherConfig{
		CredentialTTL: time.Hour,
	})

	record := pendingRecord("rec-1", "M001")
	delivered, err := dispatcher.Deliver(context.Background(), &record, domain.ChannelSMS)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !delivered {
		t.Fatal("expected delivered")
	}

	if record.ActivationStatus != domain.StatusPendingActivation {
		t.Fatalf("expected pending after delivery, got %s", record.ActivationStatus)
	}
	if record.ActivationMethod != domain.ChannelSMS || record.SMSSentAt == nil {
		t.Fatalf("sms attempt not recorded: %+v", record)
	}
	if record.TemporaryPasswordExpiresAt == nil {
		t.Fatal("expected refreshed expiry")
	}
	if got := record.TemporaryPasswordExpiresAt.Sub(*record.SMSSentAt); got != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", got)
	}

	if got := jobs.counter(domain.OutcomeSMSSent); got != 1 {
		t.Fatalf("expected sms_sent counter 1, got %d", got)
	}
	if len(store.updated) != 1 {
		t.Fatalf("expected record persisted once, got %d", len(store.updated))
	}
}

func TestDeliverFailureTransitionsRecord(t *testing.T) {
	t.Parallel()

	jobs := &fakeCounterJobRepo{}
	notifier := &fakeNotifier{failDest: map[string]bool{"jane@x.com": true}}
	store := &fakeRecordStore{}
	dispatcher := app.NewDispatcher(store, jobs, notifier, app.DispatcherConfig{})

	record := pendingRecord("rec-1", "M001")
	delivered, err := dispatcher.Deliver(context.Background(), &record, domain.ChannelEmail)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if delivered {
		t.Fatal("expected delivery failure")
	}

	if record.ActivationStatus != domain.StatusEmailFailed {
		t.Fatalf("expected email_failed, got %s", record.ActivationStatus)
	}
	if got := jobs.counter(domain.OutcomeEmailFailed); got != 1 {
		t.Fatalf("expected email_failed counter 1, got %d", got)
	}
}

func TestDispatchFanOutResolvesEveryDelivery(t *testing.T) {
	t.Parallel()

	jobs := &fakeCounterJobRepo{}
	notifier := &fakeNotifier{failDest: map[string]bool{"555000003": true}}
	store := &fakeRecordStore{}
	dispatcher := app.NewDispatcher(store, jobs, notifier, app.DispatcherConfig{Workers: 3})

	deliveries := make([]app.Delivery, 0, 20)
	for i := 0; i < 20; i++ {
		record := pendingRecord(fmt.Sprintf("rec-%d", i), fmt.Sprintf("M%03d", i))
		record.PhoneNumber = fmt.Sprintf("5550000%02d", i)
		if i == 3 {
			record.PhoneNumber = "555000003"
		}
		deliveries = append(deliveries, app.Delivery{Record: record, Channel: domain.ChannelSMS})
	}

	dispatcher.Dispatch(context.Background(), deliveries)
	dispatcher.Wait()

	if got := jobs.counter(domain.OutcomeSMSSent); got != 19 {
		t.Fatalf("expected 19 sms_sent, got %d", got)
	}
	if got := jobs.counter(domain.OutcomeSMSFailed); got != 1 {
		t.Fatalf("expected 1 sms_failed, got %d", got)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.updated) != 20 {
		t.Fatalf("expected 20 record updates, got %d", len(store.updated))
	}
}
