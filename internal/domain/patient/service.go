package patient

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
)

type Service struct {
	repo     PatientRepository
	sanitize *textSanitizer
	logger   zerolog.Logger
}

func NewService(repo PatientRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		sanitize: newTextSanitizer(),
		logger:   logger.With().Str("component", "patient").Logger(),
	}
}

var validStatuses = map[string]bool{
	StatusActive:   true,
	StatusInactive: true,
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	p.Name = s.sanitize.Clean(p.Name)
	p.Phone = s.sanitize.Clean(p.Phone)
	p.Address = s.sanitize.Clean(p.Address)
	p.Email = strings.TrimSpace(p.Email)
	if err := checkFields(fieldValues{name: &p.Name, phone: &p.Phone, address: &p.Address, age: &p.Age, status: &p.Status}); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if apperr.KindOf(err) == apperr.KindDuplicateEmail {
			s.logger.Info().Str("email", p.Email).Msg("patient email exists")
			return err
		}
		s.logger.Error().Err(err).Str("email", p.Email).Msg("create patient")
		return apperr.Internal(err)
	}
	s.logger.Info().Int64("patient_id", p.ID).Msg("patient created")
	return nil
}

// GetPatientByEmail reports absence through found rather than an error.
func (s *Service) GetPatientByEmail(ctx context.Context, email string) (p *Patient, found bool, err error) {
	p, err = s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, false, nil
		}
		s.logger.Error().Err(err).Str("email", email).Msg("get patient")
		return nil, false, apperr.Internal(err)
	}
	return p, true, nil
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list patients")
		return nil, apperr.Internal(err)
	}
	if items == nil {
		items = []*Patient{}
	}
	return items, nil
}

// UpdatePatient applies only the supplied fields. An empty update returns
// the current record.
func (s *Service) UpdatePatient(ctx context.Context, id int64, u Update) (*Patient, error) {
	u.Name = s.sanitize.cleanPtr(u.Name)
	u.Phone = s.sanitize.cleanPtr(u.Phone)
	u.Address = s.sanitize.cleanPtr(u.Address)
	if u.Email != nil {
		e := strings.TrimSpace(*u.Email)
		u.Email = &e
	}
	if err := checkFields(fieldValues{name: u.Name, phone: u.Phone, address: u.Address, age: u.Age, status: u.Status}); err != nil {
		return nil, err
	}

	var (
		p   *Patient
		err error
	)
	if u.Empty() {
		p, err = s.repo.GetByID(ctx, id)
	} else {
		p, err = s.repo.Update(ctx, id, u)
	}
	if err != nil {
		return nil, s.classify(err, id, "update patient")
	}
	s.logger.Info().Int64("patient_id", id).Msg("patient updated")
	return p, nil
}

// DeletePatient removes the patient and returns the deleted record.
func (s *Service) DeletePatient(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.classify(err, id, "delete patient")
	}
	s.logger.Info().Int64("patient_id", id).Msg("patient deleted")
	return p, nil
}

func (s *Service) classify(err error, id int64, op string) error {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound, apperr.KindDuplicateEmail:
		return err
	}
	s.logger.Error().Err(err).Int64("patient_id", id).Msg(op)
	return apperr.Internal(err)
}

// minContactLen applies to phone and address after markup is stripped.
const minContactLen = 6

type fieldValues struct {
	name, phone, address *string
	age                  *int
	status               *string
}

// checkFields validates values that survive sanitizing. Nil pointers are
// skipped.
func checkFields(v fieldValues) error {
	fields := map[string]string{}
	if v.name != nil && *v.name == "" {
		fields["name"] = "is required"
	}
	if v.phone != nil && utf8.RuneCountInString(*v.phone) < minContactLen {
		fields["phone"] = "must be at least " + strconv.Itoa(minContactLen) + " characters"
	}
	if v.address != nil && utf8.RuneCountInString(*v.address) < minContactLen {
		fields["address"] = "must be at least " + strconv.Itoa(minContactLen) + " characters"
	}
	if v.age != nil && *v.age < 0 {
		fields["age"] = "must be at least 0"
	}
	if v.status != nil && !validStatuses[*v.status] {
		fields["status"] = "must be one of: ACTIVE INACTIVE"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
