package port

import "context"

// EventConsumer feeds messages of a broker subscription to a MessageService until closed
type EventConsumer interface {
	Subscribe(ctx context.Context, handler MessageService) error
	Close() error
}

// MessageService handles one raw message. Returning an error classified as validation drops the
// message, any other error asks for redelivery.
type MessageService interface {
	HandleMessage(ctx context.Context, data []byte) error
}
