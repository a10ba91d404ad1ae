package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andriansp/gocommerce/config"
	"github.com/andriansp/gocommerce/pkg/mailer"
)

// email_worker consumes email jobs from RabbitMQ and delivers them via Mailgun.
func main() {
	cfg := config.Load()
	if !cfg.MailSendEnabled {
		log.Println("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQEmailQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}
			if job.To == "" {
				log.Printf("job without recipient, dropping")
				_ = msg.Nack(false, false)
				continue
			}

			subject, text := renderJob(&job)

			sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := mg.Send(sendCtx, job.To, subject, text, job.HTML)
			cancel()
			if err != nil {
				log.Printf("send to %s failed: %v", job.To, err)
				// requeue once via broker redelivery
				_ = msg.Nack(false, !msg.Redelivered)
				continue
			}
			log.Printf("sent %q to %s", subject, job.To)
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("email worker consuming %q", cfg.RabbitMQEmailQueue)
	<-stop
	log.Println("shutting down email worker")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
	}
}

// renderJob fills in a subject and text body for known job types when the
// producer did not set them explicitly.
func renderJob(job *mailer.EmailJob) (subject, text string) {
	subject = job.Subject
	text = job.Text

	name, _ := job.Data["name"].(string)
	if name == "" {
		name = "there"
	}

	switch job.Type {
	case mailer.JobWelcome:
		if subject == "" {
			subject = "Welcome to GoCommerce"
		}
		if text == "" {
			text = fmt.Sprintf("Hi %s,\n\nYour account is ready. Happy shopping!\n", name)
		}
	case mailer.JobPasswordChanged:
		if subject == "" {
			subject = "Your password was changed"
		}
		if text == "" {
			text = fmt.Sprintf("Hi %s,\n\nYour account password was just changed. If this wasn't you, please contact support immediately.\n", name)
		}
	default:
		if subject == "" {
			subject = "Notification from GoCommerce"
		}
	}
	return subject, text
}
