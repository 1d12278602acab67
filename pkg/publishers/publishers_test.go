package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestValidatePublisherConfigRejectsMissingHTTP(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{
		ID:   "h1",
		Type: TypeHTTP,
	})
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestLoadRegistryQueuePublishers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yml")
	raw := `
publishers:
  - id: events-queue
    type: SQS
    sqs:
      uri: " https://sqs.us-east-1.amazonaws.com/123/events "
      region: us-east-1
      endpoint: http://localhost:4566
      access_key_id: test
      secret_access_key: test
  - id: events-topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:us-east-1:123:events
      region: us-east-1
  - id: events-pubsub
    type: gcp_pubsub
    gcp_pubsub:
      project_id: demo
      topic: wa-events
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := len(reg.Enabled()); got != 3 {
		t.Fatalf("expected 3 enabled publishers, got %d", got)
	}

	sqsCfg, ok := reg.ByID("events-queue")
	if !ok || sqsCfg.Type != TypeSQS {
		t.Fatalf("events-queue missing or wrong type: %#v", sqsCfg)
	}
	if sqsCfg.SQS.QueueURL != "https://sqs.us-east-1.amazonaws.com/123/events" {
		t.Fatalf("queue url not trimmed: %q", sqsCfg.SQS.QueueURL)
	}
	if sqsCfg.SQS.Endpoint != "http://localhost:4566" || sqsCfg.SQS.AccessKeyID != "test" {
		t.Fatalf("inline aws access not decoded: %#v", sqsCfg.SQS.AWSAccessConfig)
	}

	psCfg, _ := reg.ByID("events-pubsub")
	if psCfg.PubSub == nil || psCfg.PubSub.Topic != "wa-events" {
		t.Fatalf("pubsub config not decoded: %#v", psCfg.PubSub)
	}
}

func TestLoadRegistryJSONAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.json")
	raw := `{"publishers":[{"id":"a","type":"http","http":{"url":"https://x"}},{"id":"a","type":"http","http":{"url":"https://y"}}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfigQueueTypes(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		{ID: "p", Type: TypeGCPPubSub, PubSub: &GCPQueueConfig{ProjectID: "demo"}},
		{ID: "p2", Type: TypeGCPPubSub},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %s", cfg.ID)
		}
	}
}
