package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"invoicer/internal/apperr"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- DTOs ---

// PartyRequest is the contact payload shared by customers and company
// profiles. Logo and IsDefault are ignored for customers.
type PartyRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Logo       string `json:"logo"`
	IsDefault  bool   `json:"is_default"`
}

func (r PartyRequest) snapshot() model.PartySnapshot {
	return model.PartySnapshot{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Logo:       r.Logo,
	}
}

type CustomerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type CompanyProfileResponse struct {
	CustomerResponse
	Logo      string `json:"logo"`
	IsDefault bool   `json:"is_default"`
}

// --- Interface ---

type PartyService interface {
	ListCustomers(ctx context.Context) ([]CustomerResponse, error)
	CreateCustomer(ctx context.Context, req PartyRequest) (CustomerResponse, error)
	UpdateCustomer(ctx context.Context, id string, req PartyRequest) (CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string) error

	ListCompanies(ctx context.Context) ([]CompanyProfileResponse, error)
	GetDefaultCompany(ctx context.Context) (CompanyProfileResponse, error)
	CreateCompany(ctx context.Context, req PartyRequest) (CompanyProfileResponse, error)
	UpdateCompany(ctx context.Context, id string, req PartyRequest) (CompanyProfileResponse, error)
	DeleteCompany(ctx context.Context, id string) error

	CustomerSnapshot(ctx context.Context, id string) (model.PartySnapshot, error)
	DefaultCompanySnapshot(ctx context.Context) (model.PartySnapshot, error)

	UpsertCustomerByName(ctx context.Context, snap model.PartySnapshot) (*model.Customer, error)
	UpsertCompanyByName(ctx context.Context, snap model.PartySnapshot) (*model.CompanyProfile, error)
	SaveParty(ctx context.Context, kind string, id uuid.UUID, snap model.PartySnapshot) (uuid.UUID, error)
}

type partyService struct {
	customerRepo repository.CustomerRepository
	companyRepo  repository.CompanyProfileRepository
	txManager    repository.TransactionManager
	audit        auditor
	log          *zap.Logger
}

func NewPartyService(
	customerRepo repository.CustomerRepository,
	companyRepo repository.CompanyProfileRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	log *zap.Logger,
) PartyService {
	return &partyService{
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		txManager:    txManager,
		audit:        auditor{repo: auditRepo, log: log},
		log:          log.Named("party"),
	}
}

// --- Customers ---

func (s *partyService) ListCustomers(ctx context.Context) ([]CustomerResponse, error) {
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, apperr.FromRepo(err, "customers")
	}
	res := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		res = append(res, toCustomerResponse(c))
	}
	return res, nil
}

func (s *partyService) CreateCustomer(ctx context.Context, req PartyRequest) (CustomerResponse, error) {
	if err := validateParty(req); err != nil {
		return CustomerResponse{}, err
	}

	var customer model.Customer
	customer.ApplySnapshot(req.snapshot())
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.customerRepo.Create(txCtx, &customer); err != nil {
			return apperr.FromRepo(err, "customer")
		}
		return s.audit.record(txCtx, model.ActionCreateCustomer, customer.ID.String(), customer.Name, nil)
	})
	if err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *partyService) UpdateCustomer(ctx context.Context, id string, req PartyRequest) (CustomerResponse, error) {
	customerID, err := parseID(id, "customer")
	if err != nil {
		return CustomerResponse{}, err
	}
	if err := validateParty(req); err != nil {
		return CustomerResponse{}, err
	}

	customer, err := s.overwriteCustomer(ctx, customerID, req.snapshot())
	if err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(*customer), nil
}

func (s *partyService) DeleteCustomer(ctx context.Context, id string) error {
	customerID, err := parseID(id, "customer")
	if err != nil {
		return err
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := s.customerRepo.FindByID(txCtx, customerID)
		if err != nil {
			return apperr.FromRepo(err, "customer")
		}
		if err := s.customerRepo.Delete(txCtx, customerID); err != nil {
			return apperr.FromRepo(err, "customer")
		}
		return s.audit.record(txCtx, model.ActionDeleteCustomer, customer.ID.String(), customer.Name, nil)
	})
}

// overwriteCustomer replaces every contact field of a stored customer
func (s *partyService) overwriteCustomer(ctx context.Context, id uuid.UUID, snap model.PartySnapshot) (*model.Customer, error) {
	var customer *model.Customer
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		customer, err = s.customerRepo.FindByID(txCtx, id)
		if err != nil {
			return apperr.FromRepo(err, "customer")
		}
		customer.ApplySnapshot(snap)
		if err := s.customerRepo.Update(txCtx, customer); err != nil {
			return apperr.FromRepo(err, "customer")
		}
		return s.audit.record(txCtx, model.ActionUpdateCustomer, customer.ID.String(), customer.Name, nil)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// --- Company profiles ---

func (s *partyService) ListCompanies(ctx context.Context) ([]CompanyProfileResponse, error) {
	profiles, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, apperr.FromRepo(err, "company profiles")
	}
	res := make([]CompanyProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		res = append(res, toCompanyProfileResponse(p))
	}
	return res, nil
}

func (s *partyService) GetDefaultCompany(ctx context.Context) (CompanyProfileResponse, error) {
	profile, err := s.companyRepo.FindDefault(ctx)
	if err != nil {
		return CompanyProfileResponse{}, apperr.FromRepo(err, "default company profile")
	}
	return toCompanyProfileResponse(*profile), nil
}

func (s *partyService) CreateCompany(ctx context.Context, req PartyRequest) (CompanyProfileResponse, error) {
	if err := validateParty(req); err != nil {
		return CompanyProfileResponse{}, err
	}

	profile := model.CompanyProfile{IsDefault: req.IsDefault}
	profile.ApplySnapshot(req.snapshot())

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.companyRepo.Create(txCtx, &profile); err != nil {
			return apperr.FromRepo(err, "company profile")
		}
		if profile.IsDefault {
			if err := s.companyRepo.ClearDefault(txCtx, profile.ID); err != nil {
				return apperr.FromRepo(err, "company profile")
			}
		}
		return s.audit.record(txCtx, model.ActionCreateCompany, profile.ID.String(), profile.Name, nil)
	})
	if err != nil {
		return CompanyProfileResponse{}, err
	}
	return toCompanyProfileResponse(profile), nil
}

// UpdateCompany overwrites the profile. Marking it default clears the flag
// on every other profile in the same transaction.
func (s *partyService) UpdateCompany(ctx context.Context, id string, req PartyRequest) (CompanyProfileResponse, error) {
	profileID, err := parseID(id, "company profile")
	if err != nil {
		return CompanyProfileResponse{}, err
	}
	if err := validateParty(req); err != nil {
		return CompanyProfileResponse{}, err
	}

	var profile *model.CompanyProfile
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		profile, findErr = s.companyRepo.FindByID(txCtx, profileID)
		if findErr != nil {
			return apperr.FromRepo(findErr, "company profile")
		}

		profile.ApplySnapshot(req.snapshot())
		profile.IsDefault = req.IsDefault
		if err := s.companyRepo.Update(txCtx, profile); err != nil {
			return apperr.FromRepo(err, "company profile")
		}
		if profile.IsDefault {
			if err := s.companyRepo.ClearDefault(txCtx, profile.ID); err != nil {
				return apperr.FromRepo(err, "company profile")
			}
		}
		return s.audit.record(txCtx, model.ActionUpdateCompany, profile.ID.String(), profile.Name, nil)
	})
	if err != nil {
		return CompanyProfileResponse{}, err
	}
	return toCompanyProfileResponse(*profile), nil
}

func (s *partyService) DeleteCompany(ctx context.Context, id string) error {
	profileID, err := parseID(id, "company profile")
	if err != nil {
		return err
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		profile, err := s.companyRepo.FindByID(txCtx, profileID)
		if err != nil {
			return apperr.FromRepo(err, "company profile")
		}
		if err := s.companyRepo.Delete(txCtx, profileID); err != nil {
			return apperr.FromRepo(err, "company profile")
		}
		return s.audit.record(txCtx, model.ActionDeleteCompany, profile.ID.String(), profile.Name, nil)
	})
}

// --- Invoice pre-fill ---

// CustomerSnapshot copies a saved customer for use on an invoice
func (s *partyService) CustomerSnapshot(ctx context.Context, id string) (model.PartySnapshot, error) {
	customerID, err := parseID(id, "customer")
	if err != nil {
		return model.PartySnapshot{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return model.PartySnapshot{}, apperr.FromRepo(err, "customer")
	}
	return customer.Snapshot(), nil
}

// DefaultCompanySnapshot copies the default company profile, logo included
func (s *partyService) DefaultCompanySnapshot(ctx context.Context) (model.PartySnapshot, error) {
	profile, err := s.companyRepo.FindDefault(ctx)
	if err != nil {
		return model.PartySnapshot{}, apperr.FromRepo(err, "default company profile")
	}
	return profile.Snapshot(), nil
}

// --- Identity resolution ---

// UpsertCustomerByName matches on the whole name ignoring case only; no
// whitespace or punctuation normalization. A match has every contact field
// overwritten, otherwise a new customer is created.
func (s *partyService) UpsertCustomerByName(ctx context.Context, snap model.PartySnapshot) (*model.Customer, error) {
	if strings.TrimSpace(snap.Name) == "" {
		return nil, apperr.Validation("customer name is required")
	}

	var customer *model.Customer
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.customerRepo.FindByName(txCtx, snap.Name)
		switch {
		case err == nil:
			existing.ApplySnapshot(snap)
			if err := s.customerRepo.Update(txCtx, existing); err != nil {
				return apperr.FromRepo(err, "customer")
			}
			customer = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			customer = &model.Customer{}
			customer.ApplySnapshot(snap)
			if err := s.customerRepo.Create(txCtx, customer); err != nil {
				return apperr.FromRepo(err, "customer")
			}
		default:
			return apperr.FromRepo(err, "customer")
		}
		return s.audit.record(txCtx, model.ActionUpsertCustomer, customer.ID.String(), customer.Name, nil)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// UpsertCompanyByName is UpsertCustomerByName for company profiles. The
// default flag of a matched profile is kept.
func (s *partyService) UpsertCompanyByName(ctx context.Context, snap model.PartySnapshot) (*model.CompanyProfile, error) {
	if strings.TrimSpace(snap.Name) == "" {
		return nil, apperr.Validation("company name is required")
	}

	var profile *model.CompanyProfile
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.companyRepo.FindByName(txCtx, snap.Name)
		switch {
		case err == nil:
			existing.ApplySnapshot(snap)
			if err := s.companyRepo.Update(txCtx, existing); err != nil {
				return apperr.FromRepo(err, "company profile")
			}
			profile = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = &model.CompanyProfile{}
			profile.ApplySnapshot(snap)
			if err := s.companyRepo.Create(txCtx, profile); err != nil {
				return apperr.FromRepo(err, "company profile")
			}
		default:
			return apperr.FromRepo(err, "company profile")
		}
		return s.audit.record(txCtx, model.ActionUpsertCompany, profile.ID.String(), profile.Name, nil)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// SaveParty writes an in-progress form. A known id is updated in place;
// otherwise, or when that profile is gone, the name decides.
func (s *partyService) SaveParty(ctx context.Context, kind string, id uuid.UUID, snap model.PartySnapshot) (uuid.UUID, error) {
	switch kind {
	case model.PartyCustomer:
		if id != uuid.Nil {
			customer, err := s.overwriteCustomer(ctx, id, snap)
			if err == nil {
				return customer.ID, nil
			}
			if !apperr.IsNotFound(err) {
				return uuid.Nil, err
			}
		}
		customer, err := s.UpsertCustomerByName(ctx, snap)
		if err != nil {
			return uuid.Nil, err
		}
		return customer.ID, nil

	case model.PartyCompany:
		if id != uuid.Nil {
			profile, err := s.overwriteCompany(ctx, id, snap)
			if err == nil {
				return profile.ID, nil
			}
			if !apperr.IsNotFound(err) {
				return uuid.Nil, err
			}
		}
		profile, err := s.UpsertCompanyByName(ctx, snap)
		if err != nil {
			return uuid.Nil, err
		}
		return profile.ID, nil
	}

	return uuid.Nil, apperr.Validationf("unknown party kind %q", kind)
}

// overwriteCompany replaces the contact fields of a stored profile. The
// default flag is untouched.
func (s *partyService) overwriteCompany(ctx context.Context, id uuid.UUID, snap model.PartySnapshot) (*model.CompanyProfile, error) {
	var profile *model.CompanyProfile
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		profile, err = s.companyRepo.FindByID(txCtx, id)
		if err != nil {
			return apperr.FromRepo(err, "company profile")
		}
		profile.ApplySnapshot(snap)
		if err := s.companyRepo.Update(txCtx, profile); err != nil {
			return apperr.FromRepo(err, "company profile")
		}
		return s.audit.record(txCtx, model.ActionUpdateCompany, profile.ID.String(), profile.Name, nil)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// --- Helpers ---

func validateParty(req PartyRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Validation("name is required")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return apperr.Validationf("invalid email %q", req.Email)
		}
	}
	return nil
}

func parseID(id, what string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperr.Validationf("invalid %s id", what)
	}
	return parsed, nil
}

func toCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
}

func toCompanyProfileResponse(p model.CompanyProfile) CompanyProfileResponse {
	return CompanyProfileResponse{
		CustomerResponse: CustomerResponse{
			ID:         p.ID.String(),
			Name:       p.Name,
			Email:      p.Email,
			Phone:      p.Phone,
			Address:    p.Address,
			City:       p.City,
			State:      p.State,
			PostalCode: p.PostalCode,
			Country:    p.Country,
			CreatedAt:  p.CreatedAt.Format(time.RFC3339),
			UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
		},
		Logo:      p.Logo,
		IsDefault: p.IsDefault,
	}
}
