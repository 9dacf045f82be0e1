// Package intake implements the lead intake pipeline: source resolution,
// signature verification, normalization, dedup commit, assignment and audit.
package intake

import (
	"context"
	"errors"
	"log/slog"

	"lead_intake_backend/internal/audit"
	"lead_intake_backend/internal/directory"
	"lead_intake_backend/internal/events"
	"lead_intake_backend/internal/leads/domain"
	"lead_intake_backend/internal/leads/repository"
	"lead_intake_backend/platform/apperr"
	"lead_intake_backend/platform/logger"
	"lead_intake_backend/platform/metrics"
)

// LeadStore is the Dedup & Commit store.
type LeadStore interface {
	Commit(ctx context.Context, p repository.CommitParams) (domain.Lead, error)
}

// Submission is one inbound intake attempt.
type Submission struct {
	Meta  RequestMeta
	Actor domain.ActorContext
	// Body is the raw webhook payload. It is verified before parsing.
	Body        []byte
	ContentType string
	Signature   string
	// Fields, when set, is used instead of parsing Body.
	Fields Fields
}

// Result describes an accepted lead.
type Result struct {
	Lead     domain.Lead
	Source   domain.Source
	Assignee *directory.Worker
}

// Service runs the intake pipeline. Every call produces exactly one audit
// record.
type Service struct {
	resolver   *Resolver
	verifier   *Verifier
	normalizer *Normalizer
	store      LeadStore
	assigner   *Assigner
	audit      audit.Sink
	bus        events.Bus
	log        *logger.Logger
}

func NewService(
	resolver *Resolver,
	verifier *Verifier,
	normalizer *Normalizer,
	store LeadStore,
	assigner *Assigner,
	auditSink audit.Sink,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		resolver:   resolver,
		verifier:   verifier,
		normalizer: normalizer,
		store:      store,
		assigner:   assigner,
		audit:      auditSink,
		bus:        bus,
		log:        log,
	}
}

// Submit runs a webhook or direct API attempt through the pipeline.
func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	src := s.resolver.Resolve(sub.Meta)
	res, err := s.run(ctx, src, sub)
	s.finish(ctx, src, sub.Actor, res, err)
	return res, err
}

// SubmitInternal creates a lead from the in-process form path. Privileged
// actors may set status and assigned_to.
func (s *Service) SubmitInternal(ctx context.Context, actor domain.ActorContext, fields map[string]string) (domain.Lead, error) {
	res, err := s.Submit(ctx, Submission{
		Meta:   RequestMeta{Internal: true},
		Actor:  actor,
		Fields: Canonicalize(fields),
	})
	return res.Lead, err
}

// Reject records an attempt the transport refused before the pipeline ran,
// such as an unreadable or oversized body, and returns the validation error
// that was audited.
func (s *Service) Reject(ctx context.Context, meta RequestMeta, actor domain.ActorContext, reason, field, message string) error {
	src := s.resolver.Resolve(meta)
	err := validationError(reason, field, message)
	s.finish(ctx, src, actor, Result{Source: src}, err)
	return err
}

func (s *Service) run(ctx context.Context, src domain.Source, sub Submission) (Result, error) {
	res := Result{Source: src}

	if err := s.verifier.Check(src, sub.Body, sub.Signature); err != nil {
		return res, err
	}

	fields := sub.Fields
	if fields == nil {
		parsed, err := ParsePayload(sub.ContentType, sub.Body)
		if err != nil {
			return res, validationError(ReasonMalformedPayload, "", "payload could not be parsed")
		}
		fields = parsed
	}

	candidate, err := s.normalizer.Normalize(ctx, src, sub.Actor, fields)
	if err != nil {
		return res, err
	}

	lead, err := s.store.Commit(ctx, repository.CommitParams(candidate))
	if err != nil {
		return res, commitError(err)
	}
	res.Lead = lead

	if lead.AssignedTo == nil && s.assigner != nil {
		res.Assignee = s.assign(ctx, &res.Lead)
	}
	return res, nil
}

// assign never fails the intake. A lead that could not be routed stays
// unassigned.
func (s *Service) assign(ctx context.Context, lead *domain.Lead) *directory.Worker {
	strategy := s.assigner.Strategy()
	worker, err := s.assigner.Assign(ctx, lead.ID)
	switch {
	case errors.Is(err, ErrNoEligibleWorker):
		metrics.RecordAssignment(strategy, "unassigned")
		s.log.WithContext(ctx).Warn("no eligible worker for lead", slog.String("lead_id", lead.ID.String()))
		return nil
	case errors.Is(err, ErrAlreadyAssigned):
		metrics.RecordAssignment(strategy, "already_assigned")
		s.log.WithContext(ctx).Info("lead was assigned concurrently", slog.String("lead_id", lead.ID.String()))
		return nil
	case err != nil:
		metrics.RecordAssignment(strategy, "error")
		s.log.WithContext(ctx).Error("lead assignment failed",
			slog.String("lead_id", lead.ID.String()),
			slog.String("strategy", strategy),
			slog.String("error", err.Error()),
		)
		return nil
	}

	metrics.RecordAssignment(strategy, "assigned")
	lead.AssignedTo = &worker.ID
	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		WorkerID:     worker.ID,
		WorkerName:   worker.Name,
		WorkerEmail:  worker.Email,
		LeadName:     lead.FullName,
		LeadPhone:    lead.Phone,
		LeadPlatform: lead.Platform,
		Strategy:     strategy,
	})
	return worker
}

func commitError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicatePhone):
		return duplicateError()
	case errors.Is(err, repository.ErrUnknownCampaign):
		return validationError(ReasonInvalidCampaign, FieldCampaignID, "campaign does not exist")
	case errors.Is(err, repository.ErrUnknownAssignee):
		return validationError(ReasonInvalidAssignee, FieldAssignedTo, "assignee does not exist")
	default:
		return dependencyError("lead store unavailable", err)
	}
}

// finish records the terminal outcome: audit, metrics, log and event.
func (s *Service) finish(ctx context.Context, src domain.Source, actor domain.ActorContext, res Result, err error) {
	rec := audit.NewRecord(auditAction(err), src.String())
	rec.ActorID = actor.ActorID
	outcome := outcomeOf(err)

	if err == nil {
		id := res.Lead.ID
		rec.SubjectLeadID = &id
		s.log.WithContext(ctx).IntakeOutcome(src.String(), outcome, "", id.String())
		s.bus.Publish(ctx, events.LeadIntakeAccepted{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    id,
			Source:    src.String(),
			Platform:  res.Lead.Platform,
		})
	} else {
		reason := Reason(err)
		rec.Reason = &reason
		s.log.WithContext(ctx).IntakeOutcome(src.String(), outcome, reasonForLog(reason, err), "")
		s.bus.Publish(ctx, events.LeadIntakeRejected{
			BaseEvent: events.NewBaseEvent(),
			Source:    src.String(),
			Reason:    reason,
		})
	}

	metrics.RecordIntake(src.String(), outcome)
	s.audit.Record(ctx, rec)
}

func auditAction(err error) audit.Action {
	switch apperr.GetKind(err) {
	case apperr.KindUnknown:
		if err == nil {
			return audit.ActionLeadCreated
		}
		return audit.ActionLeadIntakeFailed
	case apperr.KindConflict:
		return audit.ActionLeadDuplicateRejected
	case apperr.KindValidation:
		return audit.ActionLeadValidationRejected
	case apperr.KindUnauthorized:
		return audit.ActionSignatureInvalid
	default:
		return audit.ActionLeadIntakeFailed
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case IsDuplicate(err):
		return "duplicate"
	case IsValidation(err):
		return "invalid"
	case IsUnauthenticated(err):
		return "unauthenticated"
	default:
		return "failed"
	}
}

func reasonForLog(reason string, err error) string {
	if reason == ReasonDependency || reason == ReasonInternal {
		return reason + ": " + err.Error() + causeSuffix(err)
	}
	return reason
}

func causeSuffix(err error) string {
	if cause := errors.Unwrap(err); cause != nil {
		return " (" + cause.Error() + ")"
	}
	return ""
}
