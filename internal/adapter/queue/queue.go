package queue

// MessageQueue abstracts the broker carrying reservation events to the
// external notification service.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}
