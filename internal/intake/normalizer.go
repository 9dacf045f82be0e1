package intake

import (
	"context"
	"errors"

	"lead_intake_backend/internal/directory"
	"lead_intake_backend/internal/leads/domain"
	"lead_intake_backend/platform/phone"
	"lead_intake_backend/platform/sanitize"
	"lead_intake_backend/platform/validator"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DirectoryReader resolves referenced campaigns and workers.
type DirectoryReader interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (directory.Campaign, error)
	GetWorker(ctx context.Context, id uuid.UUID) (directory.Worker, error)
}

// Candidate is a lead that passed every field and reference rule.
type Candidate struct {
	Phone       string
	FullName    string
	Email       *string
	Product     *string
	Notes       *string
	Platform    string
	CampaignID  *uuid.UUID
	AssignedTo  *uuid.UUID
	Status      string
	LeadQuality string
	LeadSource  string
}

// Normalizer canonicalizes submitted fields and enforces the intake rules.
// Rules are evaluated in a fixed order and the first failure is reported.
type Normalizer struct {
	dir      DirectoryReader
	region   string
	validate *validator.Validator
}

func NewNormalizer(dir DirectoryReader, region string, validate *validator.Validator) *Normalizer {
	if region == "" {
		region = phone.DefaultRegion
	}
	return &Normalizer{dir: dir, region: region, validate: validate}
}

func (n *Normalizer) Normalize(ctx context.Context, src domain.Source, actor domain.ActorContext, f Fields) (Candidate, error) {
	fullName := sanitize.Text(f.Get(FieldFullName))
	rawPhone := f.Get(FieldPhone)
	rawPlatform := f.Get(FieldPlatform)
	if rawPlatform == "" {
		rawPlatform = src.DefaultPlatform()
	}

	switch {
	case fullName == "":
		return Candidate{}, validationError(ReasonMissingField, FieldFullName, "full name is required")
	case rawPhone == "":
		return Candidate{}, validationError(ReasonMissingField, FieldPhone, "phone is required")
	case rawPlatform == "":
		return Candidate{}, validationError(ReasonMissingField, FieldPlatform, "platform is required")
	}

	canonicalPhone, err := phone.Canonicalize(rawPhone, n.region)
	if err != nil {
		return Candidate{}, validationError(ReasonInvalidPhone, FieldPhone, "phone number is not valid")
	}

	c := Candidate{
		Phone:       canonicalPhone,
		FullName:    fullName,
		Product:     optional(sanitize.Text(f.Get(FieldProduct))),
		Notes:       optional(sanitize.Text(f.Get(FieldNotes))),
		Status:      domain.StatusNew,
		LeadQuality: domain.QualityWarm,
		LeadSource:  f.Get(FieldLeadSource),
	}
	if c.LeadSource == "" {
		c.LeadSource = src.DefaultLeadSource()
	}

	if email := f.Get(FieldEmail); email != "" {
		if !n.validate.IsEmail(email) {
			return Candidate{}, validationError(ReasonInvalidEmail, FieldEmail, "email address is not valid")
		}
		c.Email = &email
	}

	platform, ok := domain.CanonicalPlatform(rawPlatform)
	if !ok {
		return Candidate{}, validationError(ReasonInvalidPlatform, FieldPlatform, "platform is not supported")
	}
	c.Platform = platform

	overrides := allowsOverrides(src, actor)
	if raw := f.Get(FieldStatus); raw != "" && overrides {
		status, ok := domain.CanonicalStatus(raw)
		if !ok {
			return Candidate{}, validationError(ReasonInvalidStatus, FieldStatus, "status is not supported")
		}
		c.Status = status
	}
	if raw := f.Get(FieldQuality); raw != "" {
		quality, ok := domain.CanonicalQuality(raw)
		if !ok {
			return Candidate{}, validationError(ReasonInvalidQuality, FieldQuality, "lead quality is not supported")
		}
		c.LeadQuality = quality
	}

	// assigned_to is checked for every source so a bad reference is never
	// accepted silently. Only trusted callers have a valid one honored.
	if err := n.checkReferences(ctx, f.Get(FieldCampaignID), f.Get(FieldAssignedTo), &c); err != nil {
		return Candidate{}, err
	}
	if !overrides {
		c.AssignedTo = nil
	}
	return c, nil
}

// allowsOverrides reports whether status and a valid assigned_to from the
// payload are honored. Webhooks never get them.
func allowsOverrides(src domain.Source, actor domain.ActorContext) bool {
	return (src == domain.SourceInternal || src == domain.SourceDirectAPI) && actor.IsPrivileged()
}

// checkReferences resolves campaign and assignee concurrently and reports
// the campaign failure first.
func (n *Normalizer) checkReferences(ctx context.Context, rawCampaign, rawAssignee string, c *Candidate) error {
	if rawCampaign == "" && rawAssignee == "" {
		return nil
	}

	var campaignErr, assigneeErr error
	var g errgroup.Group
	if rawCampaign != "" {
		g.Go(func() error {
			c.CampaignID, campaignErr = n.resolveCampaign(ctx, rawCampaign)
			return nil
		})
	}
	if rawAssignee != "" {
		g.Go(func() error {
			c.AssignedTo, assigneeErr = n.resolveAssignee(ctx, rawAssignee)
			return nil
		})
	}
	_ = g.Wait()

	if campaignErr != nil {
		return campaignErr
	}
	return assigneeErr
}

func (n *Normalizer) resolveCampaign(ctx context.Context, raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, validationError(ReasonInvalidCampaign, FieldCampaignID, "campaign does not exist")
	}
	campaign, err := n.dir.GetCampaign(ctx, id)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, validationError(ReasonInvalidCampaign, FieldCampaignID, "campaign does not exist")
	}
	if err != nil {
		return nil, dependencyError("campaign directory unavailable", err)
	}
	if !campaign.IsActive() {
		return nil, validationError(ReasonInvalidCampaign, FieldCampaignID, "campaign is not active")
	}
	return &id, nil
}

func (n *Normalizer) resolveAssignee(ctx context.Context, raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, validationError(ReasonInvalidAssignee, FieldAssignedTo, "assignee does not exist")
	}
	worker, err := n.dir.GetWorker(ctx, id)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, validationError(ReasonInvalidAssignee, FieldAssignedTo, "assignee does not exist")
	}
	if err != nil {
		return nil, dependencyError("worker directory unavailable", err)
	}
	if !worker.IsEligibleAssignee() {
		return nil, validationError(ReasonInvalidAssignee, FieldAssignedTo, "assignee must be an active sales worker")
	}
	return &id, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
