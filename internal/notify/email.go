package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
)

const TaskNotificationEmail = "email:notification"

type notificationEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailQueue delivers notification emails asynchronously. It is an
// optional add-on: when redis is down or unconfigured the request path
// is unaffected, the user simply gets no email.
type EmailQueue struct {
	client *asynq.Client
	server *asynq.Server
}

// InitEmailQueue starts the asynq client and worker against redisAddr.
func InitEmailQueue(redisAddr string) *EmailQueue {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	q := &EmailQueue{client: asynq.NewClient(opts)}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotificationEmail, handleNotificationEmail)

	q.server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"emails": 10},
	})
	go func() {
		if err := q.server.Run(mux); err != nil {
			log.Printf("[notify] email worker stopped: %v", err)
		}
	}()

	log.Printf("[notify] email queue initialized (addr=%s)", redisAddr)
	return q
}

func (q *EmailQueue) Close() {
	if q.client != nil {
		_ = q.client.Close()
	}
	if q.server != nil {
		q.server.Shutdown()
	}
}

// EnqueueNotificationEmail schedules the email rendering of n.
func (q *EmailQueue) EnqueueNotificationEmail(to string, n domain.Notification) error {
	body := n.BodyEn
	if n.BodyAr != "" {
		body = n.BodyAr + "\n\n" + n.BodyEn
	}
	payload := notificationEmailPayload{
		To:      to,
		Subject: n.TitleEn,
		Body:    body,
	}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskNotificationEmail, b)
	_, err := q.client.Enqueue(task, asynq.Queue("emails"))
	return err
}

func handleNotificationEmail(_ context.Context, t *asynq.Task) error {
	var p notificationEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.To, p.Subject, p.Body); err != nil {
		log.Printf("[notify][ERROR] email send failed: %v", err)
		return err
	}
	log.Printf("[notify] email sent -> to=%s subject=%q", p.To, p.Subject)
	return nil
}
