package service

import (
	"context"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/registry"
	"dashboard-strategy/internal/domain/view"
	"dashboard-strategy/internal/ports"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrGenerationFailed is returned when the registries cannot be loaded; no partial dashboard is produced.
var ErrGenerationFailed = errors.New("dashboard generation failed, see the logs for details")

var _ ports.DashboardPort = (*DashboardService)(nil)

type DashboardService struct {
	source  ports.SnapshotSource
	options ports.OptionsRepository
	store   *registry.Store
	logger  *zap.Logger
}

func NewDashboardService(source ports.SnapshotSource, options ports.OptionsRepository, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		source:  source,
		options: options,
		store:   registry.New(logger),
		logger:  logger.Named("dashboard"),
	}
}

// Refresh reloads the options and the registries, replacing the current state.
// Any failure wraps ErrGenerationFailed.
func (s *DashboardService) Refresh(ctx context.Context) error {
	opts, err := s.options.Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: loading options: %v", ErrGenerationFailed, err)
	}
	if err := s.store.Refresh(ctx, s.source, opts); err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return nil
}

func (s *DashboardService) assembler(ctx context.Context) (*view.Assembler, error) {
	if !s.store.IsInitialized() {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Error("registry initialization failed", zap.Error(err))
			return nil, err
		}
	}
	a, err := view.NewAssembler(s.store, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return a, nil
}

// Generate builds every view: home, the exposed domain views, the area
// subviews, then the extra views. A view that fails is logged and left out.
func (s *DashboardService) Generate(ctx context.Context) (*model.Dashboard, error) {
	a, err := s.assembler(ctx)
	if err != nil {
		return nil, err
	}
	debug := s.debug()

	d := &model.Dashboard{Views: []model.View{}}
	add := func(id string, build func() (model.View, error)) {
		v, err := safeView(build)
		if err != nil {
			if debug {
				s.logger.Error("view failed", zap.String("view", id), zap.Error(err))
			} else {
				s.logger.Warn("skipping view that failed to build", zap.String("view", id))
			}
			return
		}
		d.Views = append(d.Views, v)
	}

	add(view.HomeID, a.HomeView)
	for _, def := range a.Definitions() {
		add(def.ID, func() (model.View, error) { return a.DomainView(def) })
	}
	for _, area := range a.Areas() {
		add(area.Slug, func() (model.View, error) { return a.AreaView(area) })
	}
	d.Views = append(d.Views, s.extraViews()...)

	s.logger.Debug("dashboard generated", zap.Int("views", len(d.Views)))
	return d, nil
}

// View builds one view by id: home, a domain, an area slug or an extra view path.
func (s *DashboardService) View(ctx context.Context, id string) (*model.View, error) {
	a, err := s.assembler(ctx)
	if err != nil {
		return nil, err
	}
	v, err := safeView(func() (model.View, error) { return a.View(id) })
	if err == nil {
		return &v, nil
	}
	if !errors.Is(err, view.ErrViewNotFound) {
		return nil, err
	}
	for _, extra := range s.extraViews() {
		if extra.ID == id {
			return &extra, nil
		}
	}
	return nil, err
}

func (s *DashboardService) GetOptions(ctx context.Context) (*model.StrategyOptions, error) {
	return s.options.Get(ctx)
}

// UpdateOptions saves options and regenerates the registry state with them.
func (s *DashboardService) UpdateOptions(ctx context.Context, options *model.StrategyOptions) error {
	if err := s.options.Save(ctx, options); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *DashboardService) debug() bool {
	st, err := s.store.State()
	return err == nil && st.Options.Debug
}

func (s *DashboardService) extraViews() []model.View {
	st, err := s.store.State()
	if err != nil {
		return nil
	}
	out := make([]model.View, 0, len(st.Options.ExtraViews))
	for i, raw := range st.Options.ExtraViews {
		id := raw.String("path")
		if id == "" {
			id = fmt.Sprintf("extra_%d", i)
		}
		out = append(out, model.View{ID: id, Raw: raw.Clone()})
	}
	return out
}

func safeView(build func() (model.View, error)) (v model.View, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", view.ErrBuildPanic, r)
		}
	}()
	return build()
}
