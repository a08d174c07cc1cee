package rabbitmq

// LeadReceivedKey — ключ маршрутизации события о новой заявке.
const LeadReceivedKey = "lead.received"

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// LeadQueues возвращает очереди, на которые раскладываются события о заявках.
func LeadQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "leads.received", RoutingKey: LeadReceivedKey},
	}
}
