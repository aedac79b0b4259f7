package lib

import (
	"encoding/json"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func GetKafkaProducerConfig(clientId string) kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	}
}

func KafkaProduceMessage(clientId string, topic string, payload any) error {
	cfg := GetKafkaProducerConfig(clientId)
	p, err := kafka.NewProducer(&cfg)
	if err != nil {
		log.Printf("Error on producer: %s\n", err.Error())
		return err
	}
	defer p.Close()
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	delivery := make(chan kafka.Event, 1)
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          body,
	}, delivery)
	if err != nil {
		log.Printf("Error producing message to [%s]: %s\n", topic, err.Error())
		return err
	}
	e := <-delivery
	if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
		log.Printf("Delivery failed for [%s]: %s\n", topic, m.TopicPartition.Error.Error())
		return m.TopicPartition.Error
	}
	return nil
}
