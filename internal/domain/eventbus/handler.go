package eventbus

import (
	"facegate-server-go/internal/utils"
)

// LoggingListener mirrors lifecycle events into the structured log so a
// request can be traced without any persistence layer.
type LoggingListener struct {
	logger *utils.Logger
}

// NewLoggingListener creates a listener bound to the given logger.
func NewLoggingListener(logger *utils.Logger) *LoggingListener {
	return &LoggingListener{logger: logger}
}

// Register subscribes the listener to all verification lifecycle topics.
func (l *LoggingListener) Register(bus *AsyncEventBus) error {
	topics := []string{
		EventVerificationReceived,
		EventVerificationValidated,
		EventVerificationCompressed,
		EventVerificationInvoked,
		EventVerificationNormalized,
	}
	for _, topic := range topics {
		if err := bus.SubscribeAsync(topic, l.onStage); err != nil {
			return err
		}
	}
	if err := bus.SubscribeAsync(EventCompressionDetail, l.onCompressed); err != nil {
		return err
	}
	return bus.SubscribeAsync(EventVerificationErrored, l.onErrored)
}

func (l *LoggingListener) onStage(data VerificationEventData) {
	l.logger.InfoTag("Events", "request %s entered %s (provider=%s elapsed=%dms)",
		data.RequestID, data.Stage, data.ProviderMode, data.ElapsedMs)
}

func (l *LoggingListener) onCompressed(data CompressionEventData) {
	l.logger.InfoTag("Events", "request %s compressed %s image %d -> %d bytes (quality=%d)",
		data.RequestID, data.Label, data.OriginalSize, data.EncodedSize, data.QualityUsed)
}

func (l *LoggingListener) onErrored(data VerificationEventData) {
	l.logger.WarnTag("Events", "request %s errored at %s: %s",
		data.RequestID, data.Stage, data.Error)
}
