package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeMailer struct {
	mu    sync.Mutex
	sent  []MailMessage
	err   error
	block chan struct{}
}

func (m *fakeMailer) Send(ctx context.Context, msg MailMessage) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func message(to string) MailMessage {
	return MailMessage{To: []string{to}, Subject: "hello", TextBody: "body"}
}

func TestMailQueueDropsWhenFull(t *testing.T) {
	q := NewMailQueue(&fakeMailer{}, 1, 1)

	if !q.Enqueue(message("a@example.com")) {
		t.Fatal("first enqueue rejected")
	}
	if q.Enqueue(message("b@example.com")) {
		t.Fatal("enqueue into a full queue succeeded")
	}
	stats := q.Stats()
	if stats.Queued != 1 || stats.Dropped != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMailQueueDrainsOnStop(t *testing.T) {
	mailer := &fakeMailer{}
	q := NewMailQueue(mailer, 2, 10)
	q.Run(context.Background())

	for _, to := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		q.Enqueue(message(to))
	}
	if err := q.Stop(time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if mailer.count() != 3 || q.Stats().Sent != 3 {
		t.Errorf("sent = %d, stats = %+v", mailer.count(), q.Stats())
	}

	if q.Enqueue(message("late@example.com")) {
		t.Error("enqueue after stop succeeded")
	}
	if err := q.Stop(time.Second); err != nil {
		t.Errorf("second stop: %v", err)
	}
}

func TestMailQueueCountsFailures(t *testing.T) {
	q := NewMailQueue(&fakeMailer{err: errors.New("smtp down")}, 1, 10)
	q.Run(context.Background())

	q.Enqueue(message("a@example.com"))
	q.Enqueue(message("b@example.com"))
	if err := q.Stop(time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stats := q.Stats(); stats.Failed != 2 || stats.Sent != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMailQueueStopTimesOut(t *testing.T) {
	mailer := &fakeMailer{block: make(chan struct{})}
	q := NewMailQueue(mailer, 1, 10)
	q.Run(context.Background())

	q.Enqueue(message("slow@example.com"))
	if err := q.Stop(50 * time.Millisecond); !errors.Is(err, errMailDrainTimeout) {
		t.Fatalf("stop err = %v, want drain timeout", err)
	}
}

func TestNewMailerWithoutServerLogsOnly(t *testing.T) {
	env := newTestEnv(t)
	if _, ok := NewMailer(env.cfg.Mail).(LogMailer); !ok {
		t.Error("expected LogMailer when no SMTP server is configured")
	}
	env.cfg.Mail.Server = "smtp.example.com"
	if _, ok := NewMailer(env.cfg.Mail).(*SMTPMailer); !ok {
		t.Error("expected SMTPMailer when a server is configured")
	}
}
