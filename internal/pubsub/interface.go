package pubsub

// PubSubClient publishes domain events.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	Close() error
}
