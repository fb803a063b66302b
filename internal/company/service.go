package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Werneck0live/cadastro-cnpj/internal/cnpj"
	"github.com/Werneck0live/cadastro-cnpj/internal/metrics"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
	"github.com/Werneck0live/cadastro-cnpj/internal/sentinel"
)

// Repository is the storage boundary. Any backend that reports absence as
// sentinel.ErrNotFound and unique-index violations as sentinel.ErrConflict
// satisfies it.
type Repository interface {
	CNPJLookup
	FindByID(ctx context.Context, id int64) (*models.Company, error)
	FindAll(ctx context.Context, limit, skip int64) ([]models.Company, error)
	// Save inserts when c.ID == 0 (assigning ID and timestamps) and replaces
	// the stored document otherwise.
	Save(ctx context.Context, c *models.Company) (*models.Company, error)
	Delete(ctx context.Context, id int64) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, ev models.CompanyEvent) error
}

// Input carries the mutable fields for both create and full-replace update.
type Input struct {
	CorporateName string
	Email         string
	CNPJ          string
}

type Service struct {
	repo    Repository
	pub     EventPublisher
	metrics *metrics.Metrics
	log     *slog.Logger

	publishTimeout time.Duration
}

// NewService wires the use cases. pub, m and log may be nil.
func NewService(repo Repository, pub EventPublisher, m *metrics.Metrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:           repo,
		pub:            pub,
		metrics:        m,
		log:            log.With("cmp", "company.service"),
		publishTimeout: 2 * time.Second,
	}
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Company, error) {
	id, err := s.parseCNPJ(in.CNPJ)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, id, 0); err != nil {
		return nil, err
	}

	c := &models.Company{
		CorporateName: in.CorporateName,
		Email:         in.Email,
		CNPJ:          id,
	}
	created, err := s.save(ctx, c)
	if err != nil {
		return nil, err
	}

	s.metrics.CompanyWritten(models.ActionCreated)
	s.log.Info("company_created", "id", created.ID, "cnpj", created.CNPJ.String())
	s.publish(ctx, models.ActionCreated, created)
	return created, nil
}

// Update replaces email, corporate name and cnpj of company id. A company may
// keep its own cnpj; taking one held by another company fails with
// ErrCNPJInUse.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*models.Company, error) {
	newCNPJ, err := s.parseCNPJ(in.CNPJ)
	if err != nil {
		return nil, err
	}

	current, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, newCNPJ, current.ID); err != nil {
		return nil, err
	}

	current.CorporateName = in.CorporateName
	current.Email = in.Email
	current.CNPJ = newCNPJ

	updated, err := s.save(ctx, current)
	if err != nil {
		return nil, err
	}

	s.metrics.CompanyWritten(models.ActionUpdated)
	s.log.Info("company_updated", "id", updated.ID, "cnpj", updated.CNPJ.String())
	s.publish(ctx, models.ActionUpdated, updated)
	return updated, nil
}

func (s *Service) Find(ctx context.Context, id int64) (*models.Company, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find company %d: %w", id, err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns companies newest first. Negative paging values are treated
// as 0; a limit of 0 means no limit.
func (s *Service) List(ctx context.Context, limit, skip int64) ([]models.Company, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	list, err := s.repo.FindAll(ctx, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	if list == nil {
		list = []models.Company{}
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	c, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete company %d: %w", id, err)
	}

	s.metrics.CompanyWritten(models.ActionDeleted)
	s.log.Info("company_deleted", "id", id, "cnpj", c.CNPJ.String())
	s.publish(ctx, models.ActionDeleted, c)
	return nil
}

func (s *Service) parseCNPJ(raw string) (cnpj.CNPJ, error) {
	id, err := cnpj.New(raw)
	if err != nil {
		s.metrics.CNPJRejected("invalid")
		s.log.Debug("cnpj_rejected", "raw", raw, "err", err)
		return cnpj.CNPJ{}, err
	}
	return id, nil
}

func (s *Service) ensureUnique(ctx context.Context, id cnpj.CNPJ, selfID int64) error {
	err := EnsureUniqueCNPJ(ctx, s.repo, id, selfID)
	if errors.Is(err, ErrCNPJInUse) {
		s.metrics.CNPJRejected("in_use")
	}
	return err
}

// save translates the storage unique-index rejection into ErrCNPJInUse. It
// covers the window between ensureUnique and the write.
func (s *Service) save(ctx context.Context, c *models.Company) (*models.Company, error) {
	saved, err := s.repo.Save(ctx, c)
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		s.metrics.CNPJRejected("in_use")
		s.log.Warn("cnpj_conflict_on_write", "cnpj", c.CNPJ.String(), "id", c.ID)
		return nil, ErrCNPJInUse
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("save company: %w", err)
	}
	return saved, nil
}

// publish is best effort; a broker failure never fails the write.
func (s *Service) publish(ctx context.Context, action string, c *models.Company) {
	if s.pub == nil || c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	err := s.pub.PublishEvent(ctx, models.NewCompanyEvent(action, c, time.Now()))
	s.metrics.EventPublished(err)
	if err != nil {
		s.log.Warn("publish_event_error", "action", action, "id", c.ID, "err", err)
	}
}
