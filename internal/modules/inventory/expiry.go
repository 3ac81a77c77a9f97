package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Notifier tells a seller about stock nearing or past its expiry date.
type Notifier interface {
	NotifyExpiring(ctx context.Context, m Medicine, daysLeft int) error
	// NotifyExpired is sent after m has been removed from the inventory.
	NotifyExpired(ctx context.Context, m Medicine, daysSince int) error
}

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct{ log *zap.Logger }

func NewLogNotifier(log *zap.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) NotifyExpiring(_ context.Context, m Medicine, daysLeft int) error {
	n.log.Info("medicine expiring soon",
		zap.String("seller_id", m.SellerID),
		zap.String("medicine_id", string(m.ID)),
		zap.String("name", m.Name),
		zap.Int("days_left", daysLeft))
	return nil
}

func (n *LogNotifier) NotifyExpired(_ context.Context, m Medicine, daysSince int) error {
	n.log.Info("expired medicine removed",
		zap.String("seller_id", m.SellerID),
		zap.String("medicine_id", string(m.ID)),
		zap.String("name", m.Name),
		zap.Int("days_since", daysSince))
	return nil
}

// Sweeper periodically notifies sellers about expiring stock and removes
// expired records.
type Sweeper struct {
	service  Service
	notifier Notifier
	log      *zap.Logger
	period   time.Duration
}

// NewSweeper builds a sweeper. A nil notifier logs notifications.
func NewSweeper(service Service, notifier Notifier, log *zap.Logger, period time.Duration) *Sweeper {
	if notifier == nil {
		notifier = NewLogNotifier(log)
	}
	return &Sweeper{service: service, notifier: notifier, log: log, period: period}
}

// Run checks once immediately, then every period until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.Check(ctx)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func daysBetween(from, to Date) int {
	return int(to.Sub(from.Time).Hours() / 24)
}

// Check runs one sweep: sellers of expiring stock are notified, then expired
// records are deleted and their sellers notified. The returned report lists
// the removed records as Expired. Failures are logged.
func (s *Sweeper) Check(ctx context.Context) ExpiryReport {
	report, err := s.service.ExpiryReport(ctx, "")
	if err != nil {
		s.log.Error("expiry check failed", zap.Error(err))
		return ExpiryReport{}
	}
	today := DateOf(report.CheckedAt)

	for _, m := range report.Expiring {
		if err := s.notifier.NotifyExpiring(ctx, m, daysBetween(today, m.ExpiryDate)); err != nil {
			s.log.Warn("expiring notification failed", zap.String("medicine_id", string(m.ID)), zap.Error(err))
		}
	}

	removed, err := s.service.RemoveExpired(ctx)
	if err != nil {
		s.log.Error("removing expired medicine failed", zap.Error(err))
		removed = nil
	}
	for _, m := range removed {
		if err := s.notifier.NotifyExpired(ctx, m, daysBetween(m.ExpiryDate, today)); err != nil {
			s.log.Warn("expired notification failed", zap.String("medicine_id", string(m.ID)), zap.Error(err))
		}
	}
	if removed == nil {
		removed = []Medicine{}
	}
	report.Expired = removed

	s.log.Info("expiry check completed",
		zap.Int("expiring", len(report.Expiring)),
		zap.Int("removed", len(report.Expired)))
	return report
}
