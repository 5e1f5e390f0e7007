package slack

// Export internal types for testing
type LimitedBuffer = limitedBuffer

func NewLimitedBuffer(limit int) *LimitedBuffer {
	return &limitedBuffer{limit: limit}
}

func (b *limitedBuffer) Exceeded() bool {
	return b.exceeded
}
