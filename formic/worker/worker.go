package worker

import (
	"time"

	"go.uber.org/zap"

	"github.com/formic/formic/formic/db"
)

// Notifier dispatches one queued notification given the recipient's
// settings.  It returns the channel the notice went out on.  Delivery
// backends (email, telegram) plug in here; the default notifier only logs.
type Notifier func(n *db.Notification, settings *db.NotificationSettings) (string, error)

// Worker pool with queue for dispatching submission notifications
// asynchronously.
type Worker struct {
	queue  chan *db.Notification
	stop   chan bool
	Notify Notifier
	db     *db.Connection
	log    *zap.Logger
}

func New(dbconn *db.Connection, logger *zap.Logger) *Worker {
	w := new(Worker)
	w.queue = make(chan *db.Notification, 100)
	w.stop = make(chan bool)
	w.db = dbconn
	w.log = logger
	return w
}

// LogNotifier is the default Notifier: it records the notice in the service
// log without delivering anywhere.
func LogNotifier(logger *zap.Logger) Notifier {
	return func(n *db.Notification, settings *db.NotificationSettings) (string, error) {
		logger.Info("submission notification",
			zap.String("owner", n.OwnerID),
			zap.String("form", n.FormID),
			zap.String("submission", n.SubmissionID),
			zap.Bool("email_enabled", settings.EmailNotificationsEnabled),
			zap.Bool("telegram_enabled", settings.TelegramNotificationsEnabled),
		)
		return "log", nil
	}
}

// Enqueue adds the notification to the queue and stores it in the database.
func (w *Worker) Enqueue(n *db.Notification) {
	n.QueuedAt = time.Now()
	if err := w.db.InsertNotification(n); err != nil {
		w.log.Error("failed to store notification", zap.Error(err))
	}
	w.queue <- n
}

func (w *Worker) Stop() {
	w.stop <- true
}

func (w *Worker) run(n *db.Notification) {
	defer func() {
		if err := w.db.UpdateNotification(n); err != nil {
			w.log.Error("failed to update notification", zap.Int64("id", n.ID), zap.Error(err))
		}
	}()

	settings, err := w.db.GetNotificationSettings(n.OwnerID)
	if err != nil {
		n.SentAt = time.Now()
		n.Error = err.Error()
		w.log.Error("failed to load notification settings", zap.String("owner", n.OwnerID), zap.Error(err))
		return
	}

	channel, err := w.Notify(n, settings)
	n.SentAt = time.Now()
	n.Channel = channel
	if err != nil {
		n.Error = err.Error()
		w.log.Warn("notification dispatch failed", zap.Int64("id", n.ID), zap.Error(err))
		return
	}
	w.log.Info("notification dispatched", zap.Int64("id", n.ID), zap.String("channel", channel))
}

func (w *Worker) Start() {
	go func() {
		for {
			select {
			case n := <-w.queue:
				w.run(n)
			case <-w.stop:
				return
			}
		}
	}()
	w.log.Info("notification worker started")
}
