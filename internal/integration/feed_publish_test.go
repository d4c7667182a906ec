//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/quake-feed-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-feed-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/feedview"
	"github.com/couchcryptid/quake-feed-service/internal/loader"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
	"github.com/couchcryptid/quake-feed-service/internal/pipeline"
	"github.com/couchcryptid/quake-feed-service/internal/settings"
)

const (
	testTopic = "test-earthquakes"
	feedBody  = `{"type":"FeatureCollection","features":[` +
		`{"properties":{"mag":7.1,"place":"80 km SSW of Example Harbor","time":1700000000000,"url":"https://example.test/e1"}},` +
		`{"properties":{"mag":6.4,"place":"Example Trench","time":1700000100000,"url":"https://example.test/e2"}},` +
		`{"properties":{"mag":6.0,"place":"12 km E of Sample Town","time":1700000200000,"url":"https://example.test/e3"}}]}`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("quake-feed-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestFeedToKafka runs one load against a stub feed server and verifies every
// delivered earthquake lands on the topic.
func TestFeedToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "6", r.URL.Query().Get("minmag"))
		_, _ = io.WriteString(w, feedBody)
	}))
	t.Cleanup(feed.Close)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()

	publisher := kafka.NewPublisher(cfg, metrics, logger)
	t.Cleanup(func() { _ = publisher.Close() })
	go publisher.Run(ctx)

	dispatch := loader.NewDispatcher(8)
	go dispatch.Run(ctx)

	store := settings.NewStore(feed.URL, usgs.DefaultLimit)
	view := feedview.New(time.UTC, logger)
	client := usgs.NewClient(feed.URL, usgs.DefaultConnectTimeout, usgs.DefaultReadTimeout, metrics, logger)
	l := loader.New(client, store, loader.Observers{view, publisher}, dispatch, metrics, logger)
	ctrl := pipeline.NewController(dispatch, l, view, store, nil, logger)

	require.NoError(t, ctrl.Start(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := map[string]domain.Earthquake{}
	for len(got) < 3 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from topic")

		var q domain.Earthquake
		require.NoError(t, json.Unmarshal(msg.Value, &q))
		assert.Equal(t, q.DetailURL, string(msg.Key))

		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.NotEmpty(t, headers["cycle_id"])
		assert.Equal(t, "0", headers["generation"])
		_, err = time.Parse(time.RFC3339, headers["delivered_at"])
		assert.NoError(t, err, "delivered_at should be RFC3339")

		got[q.DetailURL] = q
	}

	assert.InDelta(t, 7.1, got["https://example.test/e1"].Magnitude, 1e-9)
	assert.Equal(t, "Example Trench", got["https://example.test/e2"].Place)
	assert.Equal(t, int64(1700000200000), got["https://example.test/e3"].TimeMillis)

	snap := view.Snapshot()
	require.Len(t, snap.Rows, 3)
	assert.Empty(t, snap.Message)
	assert.Equal(t, "Example Harbor", snap.Rows[0].PrimaryLocation)
}
