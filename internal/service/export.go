package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/catalog"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/export"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/blob"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type ExportParams struct {
	Name           string
	Slug           string
	Position       int
	Script         model.ExportScript
	VariantsOption model.VariantsOption
	ProductIDs     []uuid.UUID
}

type ExportResult struct {
	Products int    `json:"products"`
	Location string `json:"location"`
}

type ExportService interface {
	ListExports(ctx context.Context) ([]model.Export, error)
	GetExport(ctx context.Context, id uuid.UUID) (model.Export, error)
	CreateExport(ctx context.Context, params ExportParams) (model.Export, error)
	UpdateExport(ctx context.Context, id uuid.UUID, params ExportParams) (model.Export, error)
	DeleteExport(ctx context.Context, id uuid.UUID) error
	// RunExport writes the feed to w and stores a copy as exports/<slug>.csv.
	RunExport(ctx context.Context, slug string, w io.Writer) (ExportResult, error)
}

type exportService struct {
	db          db.DB
	logger      *slog.Logger
	now         Clock
	shopCfg     config.Shop
	store       blob.Store
	catalogSvc  CatalogService
	exportRepo  repository.ExportRepository
	productRepo repository.ProductRepository
}

func NewExportService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	shopCfg config.Shop,
	store blob.Store,
	catalogSvc CatalogService,
	exportRepo repository.ExportRepository,
	productRepo repository.ProductRepository,
) ExportService {
	return &exportService{
		db:          db,
		logger:      logger.With(slog.String("service", "export")),
		now:         now,
		shopCfg:     shopCfg,
		store:       store,
		catalogSvc:  catalogSvc,
		exportRepo:  exportRepo,
		productRepo: productRepo,
	}
}

func (s *exportService) ListExports(ctx context.Context) ([]model.Export, error) {
	exports, err := s.exportRepo.ListExports(ctx)
	if err != nil {
		return nil, fmt.Errorf("export repository list exports: %w", err)
	}

	return exports, nil
}

func (s *exportService) GetExport(ctx context.Context, id uuid.UUID) (model.Export, error) {
	e, err := s.exportRepo.GetExport(ctx, id)
	if err != nil {
		return model.Export{}, notFound(fmt.Errorf("export repository get export: %w", err), apperr.ExportNotFoundErr)
	}

	return e, nil
}

func (s *exportService) CreateExport(ctx context.Context, params ExportParams) (model.Export, error) {
	id, err := newID()
	if err != nil {
		return model.Export{}, err
	}

	return s.save(ctx, model.Export{ID: id, CreatedAt: s.now()}, params, true)
}

func (s *exportService) UpdateExport(ctx context.Context, id uuid.UUID, params ExportParams) (model.Export, error) {
	e, err := s.GetExport(ctx, id)
	if err != nil {
		return model.Export{}, err
	}

	return s.save(ctx, e, params, false)
}

func (s *exportService) save(ctx context.Context, e model.Export, params ExportParams, create bool) (model.Export, error) {
	e.Name = params.Name
	e.Slug = params.Slug
	e.Position = params.Position
	e.Script = params.Script
	e.VariantsOption = params.VariantsOption
	e.UpdatedAt = s.now()
	if e.Script == "" {
		e.Script = model.ExportScriptGenericCSV
	}
	if e.VariantsOption == "" {
		e.VariantsOption = model.VariantsOptionDefault
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		exportRepo := s.exportRepo.WithDB(db)

		if create {
			if err := exportRepo.CreateExport(ctx, e); err != nil {
				return conflict(fmt.Errorf("export repository create export: %w", err), apperr.ExportSlugTakenErr)
			}
		} else if err := exportRepo.UpdateExport(ctx, e); err != nil {
			return conflict(notFound(fmt.Errorf("export repository update export: %w", err), apperr.ExportNotFoundErr), apperr.ExportSlugTakenErr)
		}

		if err := exportRepo.SetExportProducts(ctx, e.ID, params.ProductIDs); err != nil {
			return foreignKey(fmt.Errorf("export repository set export products: %w", err), apperr.ProductNotFoundErr)
		}

		saved, err := exportRepo.GetExport(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("export repository get export: %w", err)
		}
		e = saved

		return nil
	}); err != nil {
		return model.Export{}, fmt.Errorf("db with tx: %w", err)
	}

	return e, nil
}

func (s *exportService) DeleteExport(ctx context.Context, id uuid.UUID) error {
	if err := s.exportRepo.DeleteExport(ctx, id); err != nil {
		return notFound(fmt.Errorf("export repository delete export: %w", err), apperr.ExportNotFoundErr)
	}

	return nil
}

func (s *exportService) RunExport(ctx context.Context, slug string, w io.Writer) (ExportResult, error) {
	e, err := s.exportRepo.GetExportBySlug(ctx, slug)
	if err != nil {
		return ExportResult{}, notFound(fmt.Errorf("export repository get export by slug: %w", err), apperr.ExportNotFoundErr)
	}

	lines, err := s.lines(ctx, e)
	if err != nil {
		return ExportResult{}, err
	}

	var buf bytes.Buffer
	if err := export.Write(io.MultiWriter(w, &buf), e.Script, lines); err != nil {
		return ExportResult{}, fmt.Errorf("write export %s: %w", e.Slug, err)
	}

	location, err := s.store.Put(ctx, "exports/"+e.Slug+".csv", "text/csv", &buf)
	if err != nil {
		return ExportResult{}, fmt.Errorf("store export %s: %w", e.Slug, err)
	}

	s.logger.InfoContext(ctx, "export run",
		slog.String("slug", e.Slug),
		slog.Int("products", len(lines)),
		slog.String("location", location))

	return ExportResult{Products: len(lines), Location: location}, nil
}

func (s *exportService) lines(ctx context.Context, e model.Export) ([]export.Line, error) {
	products, err := productsInOrder(ctx, s.productRepo, e.ProductIDs)
	if err != nil {
		return nil, err
	}

	var parentIDs []uuid.UUID
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
		if p.HasVariants() {
			parentIDs = append(parentIDs, p.ID)
		}
	}

	variants := map[uuid.UUID][]model.Product{}
	if len(parentIDs) > 0 {
		variants, err = s.productRepo.ListVariants(ctx, parentIDs)
		if err != nil {
			return nil, fmt.Errorf("product repository list variants: %w", err)
		}
	}

	tree, err := s.catalogSvc.Tree(ctx)
	if err != nil {
		return nil, err
	}

	exported := export.Products(products, variants, e.VariantsOption)
	lines := make([]export.Line, 0, len(exported))
	for _, p := range exported {
		lines = append(lines, export.Line{
			Product:  p,
			URL:      s.shopCfg.BaseURL + "/products/" + p.Slug,
			Category: categoryName(tree, p, byID),
		})
	}

	return lines, nil
}

// categoryName returns the first category of the product, or of its parent
// for variants.
func categoryName(tree *catalog.Tree, p model.Product, parents map[uuid.UUID]model.Product) string {
	ids := p.CategoryIDs
	if len(ids) == 0 && p.ParentID != nil {
		ids = parents[*p.ParentID].CategoryIDs
	}

	for _, id := range ids {
		if c, ok := tree.Get(id); ok {
			return c.Name
		}
	}

	return ""
}
