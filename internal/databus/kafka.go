package databus

import (
	"strings"

	"gopkg.in/Shopify/sarama.v1"

	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
)

type Event interface {
	Serialize() []byte
	Topic() string
	Key() string
}

// syncProducer is the part of sarama.SyncProducer the bus uses.
type syncProducer interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
	Close() error
}

// DataBus publishes events to Kafka. Without brokers it only logs them.
type DataBus struct {
	producer syncProducer
}

// New connects a sync producer to the comma separated servers list. An
// empty list gives a local bus.
func New(servers string) (*DataBus, error) {
	if strings.TrimSpace(servers) == "" {
		log.Info("kafka servers not configured, events are only logged")
		return &DataBus{}, nil
	}
	hosts := strings.Split(servers, ",")
	for i := range hosts {
		hosts[i] = strings.TrimSpace(hosts[i])
	}
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	conf.Producer.RequiredAcks = sarama.WaitForLocal
	p, err := sarama.NewSyncProducer(hosts, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "create kafka producer for %s", servers)
	}
	log.Info("Kafka producer initialized...")
	return &DataBus{producer: p}, nil
}

func (db *DataBus) Local() bool {
	return db.producer == nil
}

func (db *DataBus) PublishRaw(topic, key string, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	if db.producer == nil {
		log.Debugf("databus - topic: %s message: %s", topic, string(raw))
		return nil
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(raw),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	partition, offset, err := db.producer.SendMessage(msg)
	if err != nil {
		return errors.WrapAndReport(err, "produce message")
	}
	log.Debugf("produce message success-partition: %d, offset: %d", partition, offset)
	return nil
}

func (db *DataBus) Publish(e Event) error {
	return db.PublishRaw(e.Topic(), e.Key(), e.Serialize())
}

func (db *DataBus) Close() {
	if db.producer == nil {
		return
	}
	if err := db.producer.Close(); err != nil {
		log.Warnf("close kafka producer: %v", err)
	}
}
