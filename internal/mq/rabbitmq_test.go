package mq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestHeadersToAttributes(t *testing.T) {
	assert.Nil(t, headersToAttributes(nil))

	attrs := headersToAttributes(amqp.Table{
		"type":  "login.failed",
		"raw":   []byte("bytes"),
		"count": int32(3),
	})
	assert.Equal(t, map[string]string{
		"type":  "login.failed",
		"raw":   "bytes",
		"count": "3",
	}, attrs)
}

func TestDeliveryMode(t *testing.T) {
	assert.Equal(t, amqp.Persistent, (&RabbitMQClient{durable: true}).deliveryMode())
	assert.Equal(t, amqp.Transient, (&RabbitMQClient{}).deliveryMode())
}
