package export

import (
	"context"
	"fmt"
	"math"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"

	"github.com/banshee-data/optics.report/internal/config"
	"github.com/banshee-data/optics.report/internal/monitoring"
)

// Points converts a document to InfluxDB points, one per sample. The metric
// name and unit become tags next to tags, channels become fields, and sample
// time t is written at start + t seconds.
func Points(measurement string, tags map[string]string, start time.Time, d *Document) []*write.Point {
	points := make([]*write.Point, 0, len(d.Samples))
	for k, sample := range d.Samples {
		pt := influxdb2.NewPointWithMeasurement(measurement).
			AddTag("metric", d.Name).
			AddTag("unit", d.Unit).
			SetTime(start.Add(time.Duration(math.Round(d.Time[k] * float64(time.Second)))))
		for key, value := range tags {
			pt.AddTag(key, value)
		}
		for i, v := range sample {
			pt.AddField(d.Channels[i], v)
		}
		points = append(points, pt)
	}
	return points
}

// InfluxSink writes documents to an InfluxDB bucket.
type InfluxSink struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
}

// NewInfluxSink connects to the configured server and checks its health.
func NewInfluxSink(ctx context.Context, cfg *config.InfluxConfig) (*InfluxSink, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb %s: %w", cfg.URL, err)
	}
	if health.Status != "pass" {
		client.Close()
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return nil, fmt.Errorf("influxdb %s unhealthy: %s %s", cfg.URL, health.Status, msg)
	}

	monitoring.Logger().WithFields(logrus.Fields{
		"url":    cfg.URL,
		"org":    cfg.Org,
		"bucket": cfg.Bucket,
	}).Info("connected to InfluxDB")

	return newInfluxSink(client, client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg.Measurement), nil
}

func newInfluxSink(client influxdb2.Client, w api.WriteAPIBlocking, measurement string) *InfluxSink {
	return &InfluxSink{client: client, writeAPI: w, measurement: measurement}
}

// Write sends every sample of docs, tagged with tags and time stamped from
// start.
func (s *InfluxSink) Write(ctx context.Context, tags map[string]string, start time.Time, docs ...*Document) error {
	var points []*write.Point
	for _, d := range docs {
		points = append(points, Points(s.measurement, tags, start, d)...)
	}
	if len(points) == 0 {
		return nil
	}
	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("failed to write %d points: %w", len(points), err)
	}
	monitoring.Logf("wrote %d points to InfluxDB measurement %s", len(points), s.measurement)
	return nil
}

// Close releases the client.
func (s *InfluxSink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
