package service

import (
	"context"
	"errors"
	"snaketests_backend/internal/config"
	"snaketests_backend/pkg/logger"
	"snaketests_backend/pkg/monitoring"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const mailSendTimeout = 30 * time.Second

type MailMessage struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer 邮件发送
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// SMTPMailer 基于 gomail 的 SMTP 发送
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.UseTLS && cfg.Port == 465
	sender := cfg.Sender
	if sender == "" {
		sender = cfg.Username
	}
	return &SMTPMailer{dialer: d, sender: sender}
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.sender)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		gm.AddAlternative("text/html", msg.HTMLBody)
	}
	return m.dialer.DialAndSend(gm)
}

// LogMailer 未配置 SMTP 时只记录日志
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg MailMessage) error {
	logger.Log.Info("Mail delivery skipped, SMTP not configured",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func NewMailer(cfg config.MailConfig) Mailer {
	if strings.TrimSpace(cfg.Server) == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

type MailStats struct {
	Queued  int   `json:"queued"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
}

// MailQueue 有界队列加固定数量的发送协程，入队从不阻塞请求
type MailQueue struct {
	mailer  Mailer
	queue   chan MailMessage
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

func NewMailQueue(mailer Mailer, workers, size int) *MailQueue {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = 1
	}
	return &MailQueue{
		mailer:  mailer,
		queue:   make(chan MailMessage, size),
		workers: workers,
	}
}

// Run 启动发送协程后立即返回
func (q *MailQueue) Run(ctx context.Context) {
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

func (q *MailQueue) worker() {
	defer q.wg.Done()
	for msg := range q.queue {
		if q.ctx.Err() != nil {
			q.drop(msg, "shutdown")
			continue
		}

		ctx, cancel := context.WithTimeout(q.ctx, mailSendTimeout)
		err := q.mailer.Send(ctx, msg)
		cancel()

		if err != nil {
			q.failed.Add(1)
			monitoring.MailDeliveries.WithLabelValues("failed").Inc()
			logger.Log.Error("Failed to deliver mail",
				zap.Strings("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			continue
		}
		q.sent.Add(1)
		monitoring.MailDeliveries.WithLabelValues("sent").Inc()
	}
}

func (q *MailQueue) drop(msg MailMessage, reason string) {
	q.dropped.Add(1)
	monitoring.MailDeliveries.WithLabelValues("dropped").Inc()
	logger.Log.Warn("Mail dropped",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("reason", reason),
	)
}

// Enqueue 队列已满或已停止时丢弃并返回 false
func (q *MailQueue) Enqueue(msg MailMessage) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(msg, "stopped")
		return false
	}

	select {
	case q.queue <- msg:
		return true
	default:
		q.drop(msg, "queue full")
		return false
	}
}

var errMailDrainTimeout = errors.New("mail queue drain timed out")

// Stop 停止入队，在 timeout 内发完剩余邮件，超时后放弃
func (q *MailQueue) Stop(timeout time.Duration) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.queue)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-time.After(timeout):
		err = errMailDrainTimeout
		logger.Log.Warn("Mail queue drain timed out, abandoning in-flight sends", zap.Duration("timeout", timeout))
	}

	if q.cancel != nil {
		q.cancel()
	}
	return err
}

func (q *MailQueue) Stats() MailStats {
	return MailStats{
		Queued:  len(q.queue),
		Sent:    q.sent.Load(),
		Failed:  q.failed.Load(),
		Dropped: q.dropped.Load(),
	}
}
