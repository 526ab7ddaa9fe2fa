package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"crimewatch/internal/config"
	"crimewatch/internal/models"
	"crimewatch/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const alertQueueKey = "crimewatch:alerts"

// AlertPayload is what subscribers receive when a new report lands inside
// their configured radius.
type AlertPayload struct {
	SubscriptionID uint      `json:"subscription_id"`
	UserID         uint      `json:"user_id"`
	CrimeID        uint      `json:"crime_id"`
	CrimeType      string    `json:"crime_type"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DistanceKm     float64   `json:"distance_km"`
	CreatedAt      time.Time `json:"created_at"`
}

// AlertDispatcher matches freshly created reports against active geo-radius
// subscriptions and queues one payload per match on a Redis list.
type AlertDispatcher struct {
	db     *gorm.DB
	rdb    *redis.Client
	logger *logrus.Logger
}

func NewAlertDispatcher(cfg *config.Config, conn *gorm.DB, logger *logrus.Logger) (*AlertDispatcher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &AlertDispatcher{db: conn, rdb: client, logger: logger}, nil
}

// Dispatch enqueues alerts for every active subscription whose center lies
// within its radius of the report. Failures are logged, never surfaced to the
// reporting request.
func (d *AlertDispatcher) Dispatch(ctx context.Context, crime *models.Crime) {
	var subs []models.Subscription
	if err := d.db.WithContext(ctx).Where("is_active = ?", true).Find(&subs).Error; err != nil {
		d.logger.WithError(err).Error("alert dispatch: loading subscriptions failed")
		return
	}

	for _, sub := range subs {
		dist := utils.Haversine(sub.Latitude, sub.Longitude, crime.Latitude, crime.Longitude)
		if dist > sub.Radius {
			continue
		}
		payload := AlertPayload{
			SubscriptionID: sub.ID,
			UserID:         sub.UserID,
			CrimeID:        crime.ID,
			CrimeType:      crime.CrimeType,
			Latitude:       crime.Latitude,
			Longitude:      crime.Longitude,
			DistanceKm:     dist,
			CreatedAt:      crime.CreatedAt,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			d.logger.WithError(err).Error("alert dispatch: marshal failed")
			continue
		}
		if err := d.rdb.RPush(ctx, alertQueueKey, body).Err(); err != nil {
			d.logger.WithError(err).Error("alert dispatch: enqueue failed")
		}
	}
}

func (d *AlertDispatcher) Close() error {
	return d.rdb.Close()
}

// AlertWorker drains the queue and delivers each payload to the configured
// webhook URL.
type AlertWorker struct {
	dispatcher *AlertDispatcher
	logger     *logrus.Logger
	webhookURL string
	client     *http.Client
}

func NewAlertWorker(d *AlertDispatcher, logger *logrus.Logger, webhookURL string) *AlertWorker {
	return &AlertWorker{
		dispatcher: d,
		logger:     logger,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *AlertWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			res, err := w.dispatcher.rdb.BLPop(ctx, 5*time.Second, alertQueueKey).Result()
			if err != nil {
				if err == redis.Nil || ctx.Err() != nil {
					continue
				}
				w.logger.WithError(err).Error("alert worker: BLPop error")
				continue
			}
			// res[0] is the key, res[1] the payload
			if len(res) < 2 {
				continue
			}
			w.deliver(ctx, []byte(res[1]))
		}
	}
}

func (w *AlertWorker) deliver(ctx context.Context, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		w.logger.WithError(err).Error("alert worker: building webhook request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.WithError(err).Error("alert worker: webhook delivery failed")
		return
	}
	resp.Body.Close()
}
