package service

import (
	"context"
	"errors"
	visitorserrors "gatepass/internal/visitors/errors"
	"gatepass/internal/visitors/events"
	"gatepass/internal/visitors/groupid"
	"gatepass/internal/visitors/repository"
	"gatepass/internal/visitors/validator"
	"gatepass/pkg/config"
	apperrors "gatepass/pkg/errors"
	"gatepass/pkg/metrics"
	"gatepass/pkg/model"
	"gatepass/pkg/sanitizer"
	"gatepass/pkg/validation"
	"gatepass/pkg/viewmodel"
	"net/http"
	"time"
)

const checkoutMissMessage = "Group not found or already exited"

type VisitorService interface {
	Register(ctx context.Context, reg *model.VisitorRegistration) (*model.VisitorGroup, error)
	Checkout(ctx context.Context, groupID string) (*model.VisitorGroup, error)
	List(ctx context.Context) ([]model.VisitorGroup, error)
	GetByGroupID(ctx context.Context, groupID string) (*model.VisitorGroup, error)
	Dashboard(ctx context.Context, search string, status viewmodel.StatusFilter) (*viewmodel.Dashboard, error)
}

// PhoneTokenVerifier checks the token handed out by OTP verification and
// returns the phone number it was issued for.
type PhoneTokenVerifier interface {
	VerifyPhoneToken(raw string) (string, error)
}

type visitorService struct {
	repo      repository.VisitorGroupRepository
	validator *validator.VisitorValidator
	generator *groupid.Generator
	phones    *sanitizer.PhoneNormalizer
	verifier  PhoneTokenVerifier
	publisher events.Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
	now       func() time.Time
}

func NewVisitorService(
	repo repository.VisitorGroupRepository,
	validator *validator.VisitorValidator,
	verifier PhoneTokenVerifier,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) VisitorService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &visitorService{
		repo:      repo,
		validator: validator,
		generator: groupid.NewGenerator(cfg.GroupIDLength, repo.ExistsByGroupID),
		phones:    sanitizer.NewPhoneNormalizer(cfg.PhoneRegions),
		verifier:  verifier,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *visitorService) Register(ctx context.Context, reg *model.VisitorRegistration) (*model.VisitorGroup, error) {
	log := s.cfg.Log.FromContext(ctx)
	s.sanitize(reg)

	if err := s.validator.ValidateRegistration(reg); err != nil {
		log.Warn("Visitor registration validation failed",
			"visitor_name", reg.VisitorName,
			"phone", reg.PhoneNumber,
			"error", err,
		)
		return nil, validation.AppError("Visitor registration validation failed", err)
	}

	if s.cfg.OTPRequired {
		if err := s.checkVerification(reg); err != nil {
			log.Warn("Visitor registration rejected: phone not verified", "phone", reg.PhoneNumber, "error", err)
			return nil, err
		}
	}

	attempts := s.cfg.RegisterMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		id, err := s.generator.Next(ctx)
		if err != nil {
			log.Error("Failed to generate group id", "error", err)
			return nil, apperrors.Internal("Failed to register visitor", err)
		}

		group := &model.VisitorGroup{
			GroupID:        id,
			PrimaryVisitor: reg.PrimaryVisitor,
			Companions:     reg.Companions,
			InTime:         s.now().UTC().Truncate(time.Millisecond),
		}
		if group.Companions == nil {
			group.Companions = []model.Companion{}
		}

		err = s.repo.Create(ctx, group)
		if errors.Is(err, visitorserrors.ErrDuplicateGroupID) {
			s.metrics.GroupIDCollision()
			log.Warn("Group id collided on insert, regenerating", "group_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			log.Error("Failed to create visitor group", "group_id", id, "error", err)
			return nil, apperrors.Internal("Failed to register visitor", err)
		}

		s.metrics.VisitorRegistered()
		s.publish(ctx, events.TypeRegistered, group)
		log.Info("Visitor group registered",
			"group_id", group.GroupID,
			"visitor_name", group.PrimaryVisitor.VisitorName,
			"companions", len(group.Companions),
		)
		return group, nil
	}

	log.Error("Gave up allocating a group id", "attempts", attempts)
	return nil, apperrors.Internal("Failed to register visitor", visitorserrors.ErrGroupIDExhausted)
}

func (s *visitorService) Checkout(ctx context.Context, groupID string) (*model.VisitorGroup, error) {
	log := s.cfg.Log.FromContext(ctx)
	groupID = sanitizer.NormalizeGroupID(groupID)
	if groupID == "" {
		return nil, apperrors.InvalidInput("groupId is required")
	}

	group, err := s.repo.Checkout(ctx, groupID, s.now().UTC().Truncate(time.Millisecond))
	if err != nil {
		switch {
		case errors.Is(err, visitorserrors.ErrNotFound):
			s.metrics.CheckoutRejected("not_found")
			log.Info("Checkout rejected: unknown group", "group_id", groupID)
			return nil, apperrors.New(apperrors.CodeNotFound, checkoutMissMessage, http.StatusNotFound)
		case errors.Is(err, visitorserrors.ErrAlreadyCheckedOut):
			s.metrics.CheckoutRejected("already_checked_out")
			log.Info("Checkout rejected: group already exited", "group_id", groupID)
			return nil, apperrors.New(apperrors.CodeAlreadyCheckedOut, checkoutMissMessage, http.StatusNotFound)
		}
		log.Error("Failed to check out visitor group", "group_id", groupID, "error", err)
		return nil, apperrors.Internal("Failed to check out visitor group", err)
	}

	s.metrics.VisitorCheckedOut()
	s.publish(ctx, events.TypeCheckedOut, group)
	log.Info("Visitor group checked out", "group_id", group.GroupID, "out_time", group.OutTime)
	return group, nil
}

func (s *visitorService) List(ctx context.Context) ([]model.VisitorGroup, error) {
	groups, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.FromContext(ctx).Error("Failed to list visitor groups", "error", err)
		return nil, apperrors.Internal("Failed to retrieve visitors", err)
	}
	return groups, nil
}

func (s *visitorService) GetByGroupID(ctx context.Context, groupID string) (*model.VisitorGroup, error) {
	groupID = sanitizer.NormalizeGroupID(groupID)
	if groupID == "" {
		return nil, apperrors.InvalidInput("groupId is required")
	}

	group, err := s.repo.FindByGroupID(ctx, groupID)
	if err != nil {
		if errors.Is(err, visitorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Visitor group", groupID)
		}
		s.cfg.Log.FromContext(ctx).Error("Failed to get visitor group", "group_id", groupID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve visitor group", err)
	}
	return group, nil
}

func (s *visitorService) Dashboard(ctx context.Context, search string, status viewmodel.StatusFilter) (*viewmodel.Dashboard, error) {
	groups, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	dashboard := viewmodel.Derive(groups, search, status)
	return &dashboard, nil
}

func (s *visitorService) checkVerification(reg *model.VisitorRegistration) error {
	if reg.VerificationToken == "" {
		return apperrors.Unauthorized("Phone number verification required")
	}
	if s.verifier == nil {
		return apperrors.Internal("Phone verification is not configured", nil)
	}

	phone, err := s.verifier.VerifyPhoneToken(reg.VerificationToken)
	if err != nil {
		return apperrors.Unauthorized("Invalid or expired verification token").WithCause(err)
	}
	if phone != reg.PhoneNumber {
		return apperrors.Unauthorized("Verification token does not match phone number")
	}
	return nil
}

func (s *visitorService) publish(ctx context.Context, eventType string, group *model.VisitorGroup) {
	if err := s.publisher.Publish(ctx, eventType, group); err != nil {
		s.metrics.EventPublishFailed(eventType)
		s.cfg.Log.FromContext(ctx).Warn("Failed to publish visitor event",
			"event_type", eventType,
			"group_id", group.GroupID,
			"error", err,
		)
	}
}

func (s *visitorService) sanitize(reg *model.VisitorRegistration) {
	reg.VisitorName = sanitizer.NormalizeName(reg.VisitorName)
	reg.PhoneNumber = s.phones.NormalizeOrKeep(reg.PhoneNumber)
	reg.Address = sanitizer.TrimAndNormalize(reg.Address)
	reg.Reason = sanitizer.TrimAndNormalize(reg.Reason)
	reg.PhotoURL = sanitizer.NormalizePhotoURL(reg.PhotoURL)

	for i := range reg.Companions {
		c := &reg.Companions[i]
		c.Name = sanitizer.NormalizeName(c.Name)
		if c.PhoneNumber != "" {
			c.PhoneNumber = s.phones.NormalizeOrKeep(c.PhoneNumber)
		}
		c.Photo = sanitizer.NormalizePhotoURL(c.Photo)
	}
}
