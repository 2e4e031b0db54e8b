package notification_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SebastienDelgado/detachements-backend/internal/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeOutboxRepo struct {
	listPendingFn func(ctx context.Context, limit int) ([]notification.OutboxEmail, error)
	markSentFn    func(ctx context.Context, id string) error
	markFailedFn  func(ctx context.Context, id, reason string) error
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) notification.OutboxRepository { return f }

func (f *fakeOutboxRepo) Create(ctx context.Context, email notification.OutboxEmail) error {
	return nil
}

func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]notification.OutboxEmail, error) {
	if f.listPendingFn != nil {
		return f.listPendingFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error {
	if f.markSentFn != nil {
		return f.markSentFn(ctx, id)
	}
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id, reason string) error {
	if f.markFailedFn != nil {
		return f.markFailedFn(ctx, id, reason)
	}
	return nil
}

type fakeSender struct {
	sendFn func(d notification.Directive) error
}

func (f *fakeSender) Send(d notification.Directive) error {
	if f.sendFn != nil {
		return f.sendFn(d)
	}
	return nil
}

func queuedEmail(t *testing.T) notification.OutboxEmail {
	t.Helper()
	payload, err := json.Marshal(notification.Directive{
		Kind:    notification.KindValidated,
		To:      []string{"chef.service@exemple.fr"},
		Cc:      []string{"marie.dupont@exemple.fr"},
		Subject: "Demande de détachement validée",
		Body:    "Bonjour,\n",
	})
	assert.NoError(t, err)
	return notification.OutboxEmail{
		ID:        uuid.New().String(),
		RequestID: uuid.New().String(),
		Kind:      notification.KindValidated,
		Payload:   payload,
		Status:    notification.OutboxStatusPending,
	}
}

func TestProcessOutbox(t *testing.T) {
	t.Run("success sends pending email and marks it sent", func(t *testing.T) {
		email := queuedEmail(t)

		served := false
		sent := make(chan notification.Directive, 1)
		marked := make(chan string, 1)

		repo := &fakeOutboxRepo{
			listPendingFn: func(ctx context.Context, limit int) ([]notification.OutboxEmail, error) {
				if served {
					return nil, nil
				}
				served = true
				return []notification.OutboxEmail{email}, nil
			},
			markSentFn: func(ctx context.Context, id string) error {
				marked <- id
				return nil
			},
			markFailedFn: func(ctx context.Context, id, reason string) error {
				t.Errorf("unexpected MarkFailed for %s: %s", id, reason)
				return nil
			},
		}
		sender := &fakeSender{
			sendFn: func(d notification.Directive) error {
				sent <- d
				return nil
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go notification.ProcessOutbox(ctx, repo, sender, zap.NewNop(), 10*time.Millisecond)

		select {
		case d := <-sent:
			assert.Equal(t, notification.KindValidated, d.Kind)
			assert.Equal(t, []string{"chef.service@exemple.fr"}, d.To)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for send")
		}

		select {
		case id := <-marked:
			assert.Equal(t, email.ID, id)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for MarkSent")
		}
	})

	t.Run("negative send failure marks the email failed", func(t *testing.T) {
		email := queuedEmail(t)

		served := false
		failed := make(chan string, 1)

		repo := &fakeOutboxRepo{
			listPendingFn: func(ctx context.Context, limit int) ([]notification.OutboxEmail, error) {
				if served {
					return nil, nil
				}
				served = true
				return []notification.OutboxEmail{email}, nil
			},
			markSentFn: func(ctx context.Context, id string) error {
				t.Errorf("unexpected MarkSent for %s", id)
				return nil
			},
			markFailedFn: func(ctx context.Context, id, reason string) error {
				assert.Equal(t, email.ID, id)
				failed <- reason
				return nil
			},
		}
		sender := &fakeSender{
			sendFn: func(d notification.Directive) error {
				return errors.New("smtp connect refused")
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go notification.ProcessOutbox(ctx, repo, sender, zap.NewNop(), 10*time.Millisecond)

		select {
		case reason := <-failed:
			assert.Contains(t, reason, "smtp connect refused")
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for MarkFailed")
		}
	})

	t.Run("negative undecodable payload is failed without sending", func(t *testing.T) {
		email := queuedEmail(t)
		email.Payload = []byte("{")

		served := false
		failed := make(chan string, 1)

		repo := &fakeOutboxRepo{
			listPendingFn: func(ctx context.Context, limit int) ([]notification.OutboxEmail, error) {
				if served {
					return nil, nil
				}
				served = true
				return []notification.OutboxEmail{email}, nil
			},
			markFailedFn: func(ctx context.Context, id, reason string) error {
				failed <- reason
				return nil
			},
		}
		sender := &fakeSender{
			sendFn: func(d notification.Directive) error {
				t.Error("unexpected Send for undecodable payload")
				return nil
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go notification.ProcessOutbox(ctx, repo, sender, zap.NewNop(), 10*time.Millisecond)

		select {
		case <-failed:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for MarkFailed")
		}
	})
}

func TestValidateOutboxEmail(t *testing.T) {
	valid := notification.OutboxEmail{
		ID:      uuid.New().String(),
		Kind:    notification.KindSubmitted,
		Payload: []byte(`{"kind":"request_submitted"}`),
		Status:  notification.OutboxStatusPending,
	}

	t.Run("success", func(t *testing.T) {
		assert.NoError(t, notification.ValidateOutboxEmail(valid))
	})

	t.Run("negative missing id", func(t *testing.T) {
		e := valid
		e.ID = ""
		assert.Error(t, notification.ValidateOutboxEmail(e))
	})

	t.Run("negative missing kind", func(t *testing.T) {
		e := valid
		e.Kind = ""
		assert.Error(t, notification.ValidateOutboxEmail(e))
	})

	t.Run("negative empty payload", func(t *testing.T) {
		e := valid
		e.Payload = nil
		assert.Error(t, notification.ValidateOutboxEmail(e))
	})

	t.Run("negative unknown status", func(t *testing.T) {
		e := valid
		e.Status = "queued"
		assert.Error(t, notification.ValidateOutboxEmail(e))
	})
}
