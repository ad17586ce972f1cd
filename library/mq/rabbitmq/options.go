package rabbitmq

import (
	"fmt"
	"net/url"
)

// Options 连接参数
type Options struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password" env:"LUDO_RABBIT_PASSWORD"`
	VHost    string `yaml:"vhost"`
}

func DefaultOptions() Options {
	return Options{
		Host:     "localhost",
		Port:     "5672",
		Username: "guest",
		Password: "guest",
		VHost:    "/",
	}
}

// BuildURL 构建RabbitMQ连接URL
func (o Options) BuildURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/%s",
		url.QueryEscape(o.Username),
		url.QueryEscape(o.Password),
		o.Host,
		o.Port,
		url.PathEscape(o.VHost), // 仅对VHost做路径编码
	)
}

// PublisherOptions 生产者参数
type PublisherOptions struct {
	Exchange     string `yaml:"exchange"`
	ExchangeType string `yaml:"exchange_type"`
	RoutingKey   string `yaml:"routing_key"`
	ContentType  string `yaml:"content_type"`
}

// 默认生产者选项
func DefaultPublisherOptions() PublisherOptions {
	return PublisherOptions{
		Exchange:     "ludo.events",
		ExchangeType: "fanout",
		ContentType:  "application/json",
	}
}
