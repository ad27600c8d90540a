package ir

import "fmt"

// Hazard is a cross-stream dependency edge that no happens-before chain
// covers at the time the consumer is issued.
type Hazard struct {
	Producer       int      `json:"producer"`
	Consumer       int      `json:"consumer"`
	ProducerStream StreamID `json:"producer_stream"`
	ConsumerStream StreamID `json:"consumer_stream"`
	ProducerName   string   `json:"producer_name,omitempty"`
	ConsumerName   string   `json:"consumer_name,omitempty"`
}

func (h Hazard) String() string {
	return fmt.Sprintf("%s@%d (stream %s) -> %s@%d (stream %s)",
		displayName(h.ProducerName, h.Producer), h.Producer, h.ProducerStream,
		displayName(h.ConsumerName, h.Consumer), h.Consumer, h.ConsumerStream)
}

func displayName(name string, pos int) string {
	if name == "" {
		return fmt.Sprintf("%%%d", pos)
	}
	return name
}
