package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"

	"golang.org/x/sync/errgroup"
)

// CatalogService manages the four lookup collections products reference:
// categories, product types, locations and providers.
type CatalogService interface {
	Create(ctx context.Context, actor model.Actor, kind model.CatalogKind, req dto.CreateCatalogRequest) (*dto.CatalogResponse, error)
	List(ctx context.Context, kind model.CatalogKind, withCounts bool) ([]dto.CatalogResponse, error)
	Get(ctx context.Context, kind model.CatalogKind, id string) (*dto.CatalogResponse, error)
	Update(ctx context.Context, actor model.Actor, kind model.CatalogKind, id string, req dto.UpdateCatalogRequest) (*dto.CatalogResponse, error)
	Delete(ctx context.Context, actor model.Actor, kind model.CatalogKind, id string) error
}

type catalogService struct {
	repo        repository.CatalogRepository
	productRepo repository.ProductRepository
	activity    ActivityService
}

func NewCatalogService(repo repository.CatalogRepository, productRepo repository.ProductRepository, activity ActivityService) CatalogService {
	return &catalogService{repo: repo, productRepo: productRepo, activity: activity}
}

func (s *catalogService) Create(ctx context.Context, actor model.Actor, kind model.CatalogKind, req dto.CreateCatalogRequest) (*dto.CatalogResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.checkUniqueName(ctx, kind, name, ""); err != nil {
		return nil, err
	}
	e := &model.CatalogEntry{
		Name:        name,
		Description: req.Description,
	}
	if kind == model.KindProvider {
		e.ContactName = req.ContactName
		e.Email = req.Email
		e.Phone = req.Phone
		e.Address = req.Address
		e.Website = req.Website
	}
	if err := s.repo.Create(ctx, kind, e); err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	s.activity.Record(ctx, actor, model.ActionCreate, model.EntityCatalog, e.ID, e.Name, string(kind))
	return catalogToResponse(e, nil), nil
}

func (s *catalogService) List(ctx context.Context, kind model.CatalogKind, withCounts bool) ([]dto.CatalogResponse, error) {
	entries, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	counts := make([]int64, len(entries))
	if withCounts {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(8)
		for i := range entries {
			i := i
			g.Go(func() error {
				n, err := s.productRepo.CountByField(gctx, kind.ProductField(), entries[i].ID)
				counts[i] = n
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("count products per %s: %w", kind, err)
		}
	}

	out := make([]dto.CatalogResponse, 0, len(entries))
	for i := range entries {
		var cnt *int64
		if withCounts {
			cnt = &counts[i]
		}
		out = append(out, *catalogToResponse(&entries[i], cnt))
	}
	return out, nil
}

func (s *catalogService) Get(ctx context.Context, kind model.CatalogKind, id string) (*dto.CatalogResponse, error) {
	e, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, notFound(err, string(kind), id)
	}
	n, err := s.productRepo.CountByField(ctx, kind.ProductField(), id)
	if err != nil {
		return nil, err
	}
	return catalogToResponse(e, &n), nil
}

func (s *catalogService) Update(ctx context.Context, actor model.Actor, kind model.CatalogKind, id string, req dto.UpdateCatalogRequest) (*dto.CatalogResponse, error) {
	e, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, notFound(err, string(kind), id)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.checkUniqueName(ctx, kind, name, id); err != nil {
			return nil, err
		}
		e.Name = name
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if kind == model.KindProvider {
		setIf(&e.ContactName, req.ContactName)
		setIf(&e.Email, req.Email)
		setIf(&e.Phone, req.Phone)
		setIf(&e.Address, req.Address)
		setIf(&e.Website, req.Website)
	}
	if err := s.repo.Update(ctx, kind, e); err != nil {
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}
	s.activity.Record(ctx, actor, model.ActionUpdate, model.EntityCatalog, e.ID, e.Name, string(kind))
	return catalogToResponse(e, nil), nil
}

// Delete refuses while any product still points at the entry, so products
// never reference a missing lookup document through this API.
func (s *catalogService) Delete(ctx context.Context, actor model.Actor, kind model.CatalogKind, id string) error {
	e, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return notFound(err, string(kind), id)
	}
	n, err := s.productRepo.CountByField(ctx, kind.ProductField(), id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%q is used by %d product(s): %w", e.Name, n, ErrConflict)
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return notFound(err, string(kind), id)
	}
	s.activity.Record(ctx, actor, model.ActionDelete, model.EntityCatalog, e.ID, e.Name, string(kind))
	return nil
}

func (s *catalogService) checkUniqueName(ctx context.Context, kind model.CatalogKind, name, selfID string) error {
	if !kind.UniqueNames() {
		return nil
	}
	existing, err := s.repo.FindByName(ctx, kind, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("%s named %q already exists: %w", kind, name, ErrConflict)
	}
	return nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func catalogToResponse(e *model.CatalogEntry, count *int64) *dto.CatalogResponse {
	return &dto.CatalogResponse{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		ContactName:  e.ContactName,
		Email:        e.Email,
		Phone:        e.Phone,
		Address:      e.Address,
		Website:      e.Website,
		ProductCount: count,
	}
}

// catalogNames resolves lookup ids to display names.
type catalogNames map[model.CatalogKind]map[string]string

func (n catalogNames) name(kind model.CatalogKind, id string) string {
	if id == "" {
		return ""
	}
	return n[kind][id]
}

// loadCatalogNames reads all four lookup collections in parallel.
func loadCatalogNames(ctx context.Context, repo repository.CatalogRepository) (catalogNames, error) {
	kinds := []model.CatalogKind{model.KindCategory, model.KindProductType, model.KindLocation, model.KindProvider}
	lists := make([][]model.CatalogEntry, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, k := range kinds {
		i, k := i, k
		g.Go(func() error {
			l, err := repo.List(gctx, k)
			lists[i] = l
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load catalog names: %w", err)
	}

	names := make(catalogNames, len(kinds))
	for i, k := range kinds {
		m := make(map[string]string, len(lists[i]))
		for _, e := range lists[i] {
			m[e.ID] = e.Name
		}
		names[k] = m
	}
	return names, nil
}
