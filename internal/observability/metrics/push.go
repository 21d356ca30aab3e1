package metrics

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Pusher ships the registry to a Prometheus Pushgateway. The CLI is short
// lived, so metrics are pushed once when the application stops.
type Pusher struct {
	endpoint string
	job      string
	grouping map[string]string
}

// NewPusher returns nil when endpoint is empty.
func NewPusher(endpoint, job string, grouping map[string]string) *Pusher {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil
	}
	return &Pusher{
		endpoint: endpoint,
		job:      strings.TrimSpace(job),
		grouping: grouping,
	}
}

func (p *Pusher) Push(ctx context.Context, gatherer prometheus.Gatherer) error {
	if p == nil || gatherer == nil {
		return nil
	}
	if p.job == "" {
		return errors.New("pushgateway job is required")
	}

	pusher := push.New(p.endpoint, p.job).Gatherer(gatherer)
	for key, value := range p.grouping {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		pusher = pusher.Grouping(key, value)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return pusher.PushContext(ctx)
}
