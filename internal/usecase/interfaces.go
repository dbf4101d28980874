package usecase

// Broadcaster is the publish/subscribe fan-out primitive. Publishing to a
// topic nobody subscribes to succeeds; a saturated subscriber surfaces as
// an error, synchronously.
type Broadcaster interface {
	Publish(topic string, payload []byte) error
}

// ContentFilter screens chat text before persistence. Implementations are
// swappable; the default is a word-list filter.
type ContentFilter interface {
	ContainsBadWord(text string) bool
}
