package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"reflow_oven/internal/config"
	"reflow_oven/internal/logger"
	"reflow_oven/internal/models"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Topic suffixes under the configured prefix.
const (
	TopicSample = "sample"
	TopicReport = "report"
)

// Publisher streams live samples and run reports to an MQTT broker. Sample
// publishes are QoS 0 fire-and-forget; run reports use QoS 1 because a lost
// abort report is worth a retry.
type Publisher struct {
	client paho.Client
	prefix string
	log    *logger.Logger
}

// NewPublisher connects to the broker with automatic reconnect.
func NewPublisher(cfg config.MQTT, log *logger.Logger) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return &Publisher{client: client, prefix: cfg.TopicPrefix, log: log}, nil
}

// PublishSample sends the live snapshot. Called from the control loop, so it
// never waits on the token; delivery failures are only logged.
func (p *Publisher) PublishSample(snap models.OvenSnapshot) {
	payload, err := SamplePayload(snap)
	if err != nil {
		p.log.Errorw("sample payload", "err", err)
		return
	}
	p.publishAsync(p.prefix+"/"+TopicSample, 0, payload)
}

// PublishReport sends the finished run record.
func (p *Publisher) PublishReport(rec models.RunRecord) {
	payload, err := ReportPayload(rec)
	if err != nil {
		p.log.Errorw("report payload", "err", err)
		return
	}
	p.publishAsync(p.prefix+"/"+TopicReport, 1, payload)
}

func (p *Publisher) publishAsync(topic string, qos byte, payload []byte) {
	token := p.client.Publish(topic, qos, false, payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			p.log.Errorw("mqtt publish failed", "err", token.Error(), "topic", topic)
		}
	}()
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

// SamplePayload renders the snapshot wire format.
func SamplePayload(snap models.OvenSnapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// ReportPayload renders the run-report wire format: the record plus the
// derived total run length, which broker-side consumers graph directly.
func ReportPayload(rec models.RunRecord) ([]byte, error) {
	type report struct {
		models.RunRecord
		TotalSeconds int `json:"total_seconds"`
	}
	r := report{RunRecord: rec}
	if !rec.EndedAt.IsZero() {
		r.TotalSeconds = int(rec.EndedAt.Sub(rec.StartedAt) / time.Second)
	}
	return json.Marshal(r)
}
