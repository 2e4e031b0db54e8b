package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/SebastienDelgado/detachements-backend/internal/events"
	"github.com/SebastienDelgado/detachements-backend/internal/notification"
	requesterrors "github.com/SebastienDelgado/detachements-backend/internal/request/errors"
	"github.com/SebastienDelgado/detachements-backend/internal/shared/contextutil"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusRefused   = "refused"
	StatusCancelled = "cancelled"
)

const (
	PendingCountKey = "requests:pending_count"
	pendingCountTTL = 30 * time.Second
)

// DefaultTypes is the detachment category list used when
// DETACHEMENT_TYPES is not configured.
var DefaultTypes = []string{"21B", "21C", "Information"}

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, req CreateRequestDTO) (SubmitResponse, error)
	GetAll(ctx context.Context, f ListFilter) ([]RequestResponse, error)
	GetByID(ctx context.Context, id string) (RequestResponse, error)
	PendingCount(ctx context.Context) (int64, error)
	Export(ctx context.Context, f ListFilter) ([]byte, error)
	Validate(ctx context.Context, actor Actor, id string) (RequestResponse, bool, error)
	Refuse(ctx context.Context, actor Actor, id, reason string) (RequestResponse, error)
	Cancel(ctx context.Context, actor Actor, id, reason string) (RequestResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	outbox    notification.OutboxRepository
	formatter *notification.Formatter
	publisher EventPublisher
	types     []string
	rdb       *redis.Client
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outbox notification.OutboxRepository,
	formatter *notification.Formatter,
	publisher EventPublisher,
	types []string,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	if len(types) == 0 {
		types = DefaultTypes
	}
	if publisher == nil {
		publisher = NewNoopEventPublisher()
	}
	return &service{
		db:        db,
		repo:      repo,
		outbox:    outbox,
		formatter: formatter,
		publisher: publisher,
		types:     types,
		rdb:       rdb,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, req CreateRequestDTO) (SubmitResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit request received",
		zap.String("request_id", rid),
		zap.String("entity", req.Entity),
		zap.String("type", req.Type),
		zap.String("date_from", req.DateFrom),
		zap.String("date_to", req.DateTo),
	)

	rec, err := validateSubmission(req, s.types, time.Now().UTC())
	if err != nil {
		s.logger.Warn("submit request validation failed",
			zap.String("request_id", rid),
			zap.Error(err),
		)
		return SubmitResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit request begin tx failed", zap.Error(err))
		return SubmitResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, rec); err != nil {
		s.logger.Error("submit request persist failed", zap.Error(err))
		return SubmitResponse{}, err
	}

	directive := s.formatter.Submitted(toNotification(rec))
	if err := s.enqueueDirective(ctx, tx, rid, rec.ID.String(), directive); err != nil {
		return SubmitResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit request commit failed", zap.Error(err))
		return SubmitResponse{}, err
	}

	s.invalidatePendingCount(ctx)
	s.publishLifecycleEvent(ctx, rid, rec, events.RequestSubmitted)

	s.logger.Info("submit request success",
		zap.String("request_id", rid),
		zap.String("detachment_id", rec.ID.String()),
		zap.Float64("days", rec.Days),
	)

	return SubmitResponse{ID: rec.ID.String(), Days: rec.Days, Status: rec.Status}, nil
}

func (s *service) GetAll(ctx context.Context, f ListFilter) ([]RequestResponse, error) {
	requests, err := s.repo.FindAll(ctx, f)
	if err != nil {
		s.logger.Error("list requests failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, id string) (RequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		s.logger.Error("get request by id failed", zap.String("detachment_id", id), zap.Error(err))
		return RequestResponse{}, err
	}
	return mapToResponse(*rec), nil
}

func (s *service) PendingCount(ctx context.Context) (int64, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, PendingCountKey).Result(); err == nil {
			if n, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				return n, nil
			}
		}
	}

	v, err, _ := s.sf.Do(PendingCountKey, func() (interface{}, error) {
		n, err := s.repo.CountPending(ctx)
		if err != nil {
			return nil, err
		}
		if s.rdb != nil {
			s.rdb.Set(ctx, PendingCountKey, strconv.FormatInt(n, 10), pendingCountTTL)
		}
		return n, nil
	})
	if err != nil {
		s.logger.Error("count pending requests failed", zap.Error(err))
		return 0, err
	}

	return v.(int64), nil
}

// Validate flips a pending request to sent and queues the validation
// email. A second call on the same id reports already=true and queues
// nothing.
func (s *service) Validate(ctx context.Context, actor Actor, id string) (RequestResponse, bool, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("validate request",
		zap.String("request_id", rid),
		zap.String("detachment_id", id),
		zap.String("actor", actor.Email),
	)

	if _, err := uuid.Parse(id); err != nil {
		return RequestResponse{}, false, requesterrors.ErrInvalidRequestID
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, false, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, false, err
	}

	switch rec.Status {
	case StatusPending:
		// fall through to the conditional flip
	case StatusSent:
		s.logger.Info("validate request already sent", zap.String("detachment_id", id))
		return mapToResponse(*rec), true, nil
	default:
		return RequestResponse{}, false, requesterrors.ErrInvalidStatusTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("validate request begin tx failed", zap.Error(err))
		return RequestResponse{}, false, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := time.Now().UTC()
	updated, err := qtx.MarkValidated(ctx, id, actor.Email, now)
	if err != nil {
		s.logger.Error("validate request flip failed", zap.String("detachment_id", id), zap.Error(err))
		return RequestResponse{}, false, err
	}

	if !updated {
		// Lost the race: answer from the committed state.
		rec, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return RequestResponse{}, false, err
		}
		if rec.Status == StatusSent {
			s.logger.Info("validate request already sent", zap.String("detachment_id", id))
			return mapToResponse(*rec), true, nil
		}
		s.logger.Warn("validate request invalid transition",
			zap.String("detachment_id", id),
			zap.String("status", rec.Status),
		)
		return RequestResponse{}, false, requesterrors.ErrInvalidStatusTransition
	}

	rec.Status = StatusSent
	rec.ValidatedAt = &now
	rec.DecidedBy = &actor.Email

	directive := s.formatter.Validated(toNotification(rec), actor.Name)
	if err := s.enqueueDirective(ctx, tx, rid, id, directive); err != nil {
		return RequestResponse{}, false, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("validate request commit failed", zap.String("detachment_id", id), zap.Error(err))
		return RequestResponse{}, false, err
	}

	s.invalidatePendingCount(ctx)
	s.publishLifecycleEvent(ctx, rid, rec, events.RequestValidated)

	s.logger.Info("validate request success",
		zap.String("request_id", rid),
		zap.String("detachment_id", id),
		zap.String("actor", actor.Email),
	)

	return mapToResponse(*rec), false, nil
}

func (s *service) Refuse(ctx context.Context, actor Actor, id, reason string) (RequestResponse, error) {
	return s.decide(ctx, actor, id, reason, StatusRefused, events.RequestRefused)
}

func (s *service) Cancel(ctx context.Context, actor Actor, id, reason string) (RequestResponse, error) {
	return s.decide(ctx, actor, id, reason, StatusCancelled, events.RequestCancelled)
}

// decide applies a refuse or cancel transition: pending only, reason
// required, applicant notified with the reason.
func (s *service) decide(ctx context.Context, actor Actor, id, reason, target, eventType string) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("decide request",
		zap.String("request_id", rid),
		zap.String("detachment_id", id),
		zap.String("target_status", target),
		zap.String("actor", actor.Email),
	)

	if _, err := uuid.Parse(id); err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return RequestResponse{}, requesterrors.ErrReasonRequired
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}
	if rec.Status != StatusPending {
		s.logger.Warn("decide request invalid transition",
			zap.String("detachment_id", id),
			zap.String("status", rec.Status),
			zap.String("target_status", target),
		)
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := time.Now().UTC()
	updated, err := qtx.MarkDecided(ctx, id, target, reason, actor.Email, now)
	if err != nil {
		s.logger.Error("decide request flip failed", zap.String("detachment_id", id), zap.Error(err))
		return RequestResponse{}, err
	}
	if !updated {
		// Raced with another transition since the read above.
		rec, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return RequestResponse{}, err
		}
		s.logger.Warn("decide request invalid transition",
			zap.String("detachment_id", id),
			zap.String("status", rec.Status),
			zap.String("target_status", target),
		)
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	rec.Status = target
	rec.DecisionAt = &now
	rec.DecisionReason = &reason
	rec.DecidedBy = &actor.Email

	var directive notification.Directive
	if target == StatusRefused {
		directive = s.formatter.Refused(toNotification(rec), reason)
	} else {
		directive = s.formatter.Cancelled(toNotification(rec), reason)
	}
	if err := s.enqueueDirective(ctx, tx, rid, id, directive); err != nil {
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide request commit failed", zap.String("detachment_id", id), zap.Error(err))
		return RequestResponse{}, err
	}

	s.invalidatePendingCount(ctx)
	s.publishLifecycleEvent(ctx, rid, rec, eventType)

	s.logger.Info("decide request success",
		zap.String("request_id", rid),
		zap.String("detachment_id", id),
		zap.String("status", target),
		zap.String("actor", actor.Email),
	)

	return mapToResponse(*rec), nil
}

func (s *service) enqueueDirective(ctx context.Context, tx *sql.Tx, traceID, requestID string, d notification.Directive) error {
	payload, err := json.Marshal(d)
	if err != nil {
		s.logger.Error("marshal directive failed", zap.String("detachment_id", requestID), zap.Error(err))
		return err
	}

	obx := s.outbox.WithTx(tx)
	if err := obx.Create(ctx, notification.OutboxEmail{
		ID:        uuid.NewString(),
		TraceID:   traceID,
		RequestID: requestID,
		Kind:      d.Kind,
		Payload:   payload,
		Status:    notification.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("enqueue notification failed",
			zap.String("detachment_id", requestID),
			zap.String("kind", d.Kind),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) publishLifecycleEvent(ctx context.Context, traceID string, rec *DetachmentRequest, eventType string) {
	event := events.RequestLifecycleEvent{
		EventType:  eventType,
		TraceID:    traceID,
		RequestID:  rec.ID.String(),
		Entity:     rec.Entity,
		Type:       rec.Type,
		Status:     rec.Status,
		Days:       rec.Days,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishLifecycle(ctx, event); err != nil {
		s.logger.Error("publish lifecycle event failed",
			zap.String("detachment_id", rec.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *service) invalidatePendingCount(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, PendingCountKey).Err(); err != nil {
		s.logger.Error("failed to invalidate pending count cache",
			zap.Error(err),
			zap.String("key", PendingCountKey),
		)
	}
}

func toNotification(r *DetachmentRequest) notification.Request {
	return notification.Request{
		ID:             r.ID.String(),
		ApplicantName:  r.ApplicantName,
		ApplicantEmail: r.ApplicantEmail,
		Entity:         r.Entity,
		Place:          r.Place,
		DateFrom:       r.DateFrom,
		DateTo:         r.DateTo,
		StartPeriod:    r.StartPeriod,
		EndPeriod:      r.EndPeriod,
		Days:           r.Days,
		Type:           r.Type,
		ManagerEmail:   r.ManagerEmail,
		HREmail:        r.HREmail,
		Comment:        r.Comment,
	}
}

func mapToResponse(r DetachmentRequest) RequestResponse {
	resp := RequestResponse{
		ID:             r.ID.String(),
		ApplicantName:  r.ApplicantName,
		ApplicantEmail: r.ApplicantEmail,
		Entity:         r.Entity,
		Place:          r.Place,
		DateFrom:       r.DateFrom.Format("2006-01-02"),
		DateTo:         r.DateTo.Format("2006-01-02"),
		StartPeriod:    r.StartPeriod,
		EndPeriod:      r.EndPeriod,
		Days:           r.Days,
		Type:           r.Type,
		ManagerEmail:   r.ManagerEmail,
		HREmail:        r.HREmail,
		Comment:        r.Comment,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	if r.ValidatedAt != nil {
		v := r.ValidatedAt.Format(time.RFC3339)
		resp.ValidatedAt = &v
	}
	if r.DecisionAt != nil {
		v := r.DecisionAt.Format(time.RFC3339)
		resp.DecisionAt = &v
	}
	resp.DecisionReason = r.DecisionReason
	resp.DecidedBy = r.DecidedBy
	return resp
}

func mapToListResponse(requests []DetachmentRequest) []RequestResponse {
	resp := make([]RequestResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapToResponse(r)
	}
	return resp
}
