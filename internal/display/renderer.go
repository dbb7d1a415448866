package display

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/zen-display/internal/infrastructure/mqtt"
)

// Renderer puts a frame on the panel.
type Renderer interface {
	Render(ctx context.Context, f Frame) error
}

// Publisher is the part of mqtt.Client the MQTT renderer uses.
type Publisher interface {
	Topics() mqtt.Topics
	PublishRetained(topic string, payload []byte) error
}

// MQTTRenderer publishes each frame as retained JSON on
// zendisplay/{hw}/display/frame, where the panel driver picks it up.
type MQTTRenderer struct {
	pub Publisher
}

func NewMQTTRenderer(pub Publisher) *MQTTRenderer {
	return &MQTTRenderer{pub: pub}
}

func (r *MQTTRenderer) Render(_ context.Context, f Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	if err := r.pub.PublishRetained(r.pub.Topics().DisplayFrame(), payload); err != nil {
		return fmt.Errorf("publishing frame: %w", err)
	}
	return nil
}

// LogRenderer writes a one-line description of every frame to a logger.
// It stands in for a panel during development.
type LogRenderer struct {
	logger Logger
}

func NewLogRenderer(logger Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

func (r *LogRenderer) Render(_ context.Context, f Frame) error {
	args := []any{"view", f.View, "reason", f.Reason, "clock", f.Clock}
	switch {
	case f.Provisioning != nil:
		args = append(args, "headline", f.Provisioning.Headline, "name_line", f.Provisioning.Line3)
	case f.Calendar != nil:
		args = append(args, "selected", f.Calendar.Selected, "location", f.Calendar.Location)
	case f.Email != nil:
		args = append(args, "selected", f.Email.Selected, "subject", f.Email.Subject)
	}
	r.logger.Info("frame rendered", args...)
	return nil
}
