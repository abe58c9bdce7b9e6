package floorplan

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"bistro/internal/domain/hours"
	"bistro/internal/domain/reservation"
	"bistro/internal/domain/table"
	"bistro/internal/pkg/errs"
	"bistro/internal/pkg/telemetry"
	"bistro/internal/usecase/shared"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const reloadDelay = 500 * time.Millisecond

// File is the on-disk shape of the floor plan.
type File struct {
	Tables []TableSpec `yaml:"tables" validate:"required,min=1,dive"`
	Hours  []HoursSpec `yaml:"hours" validate:"dive"`
}

type TableSpec struct {
	ID    int `yaml:"id" validate:"required,gt=0"`
	Seats int `yaml:"seats" validate:"required,gt=0"`
}

type HoursSpec struct {
	Key    string `yaml:"key" validate:"required"`
	Open   string `yaml:"open" validate:"required_unless=Closed true"`
	Close  string `yaml:"close" validate:"required_unless=Closed true"`
	Closed bool   `yaml:"closed"`
}

// Plan is an immutable, validated floor plan.
type Plan struct {
	tables   []table.Table
	calendar hours.Calendar
}

func (p *Plan) Tables() []table.Table {
	out := make([]table.Table, len(p.tables))
	copy(out, p.tables)
	return out
}

// Floorplan serves the current plan and swaps it atomically on reload.
// It is both the table inventory and the opening hours source.
type Floorplan struct {
	path     string
	current  atomic.Pointer[Plan]
	validate *validator.Validate
	metrics  *telemetry.Metrics

	mu        sync.Mutex
	listeners []func()
}

var (
	_ shared.TableInventory = (*Floorplan)(nil)
	_ shared.HoursSource    = (*Floorplan)(nil)
)

// Load reads and validates the file at path.
func Load(path string, metrics *telemetry.Metrics) (*Floorplan, error) {
	f := &Floorplan{
		path:     path,
		validate: validator.New(),
		metrics:  metrics,
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// FromPlan serves a fixed plan; Reload and Watch are not available.
func FromPlan(p *Plan) *Floorplan {
	f := &Floorplan{validate: validator.New()}
	f.current.Store(p)
	return f
}

func (f *Floorplan) AllTables(_ context.Context) ([]table.Table, error) {
	return f.current.Load().Tables(), nil
}

func (f *Floorplan) Lookup(key string) (hours.Rule, bool) {
	return f.current.Load().calendar.Lookup(key)
}

// OnReload registers fn to run after every successful Reload. The initial Load does not
// fire it.
func (f *Floorplan) OnReload(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// Reload keeps the previous plan when the new file is invalid.
func (f *Floorplan) Reload() error {
	if f.path == "" {
		return errs.New("floor plan has no backing file")
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.metrics.RecordFloorplanLoad(false)
		return errs.Wrapf(err, "failed to read floor plan %s", f.path)
	}
	p, err := Parse(data, f.validate)
	if err != nil {
		f.metrics.RecordFloorplanLoad(false)
		return errs.Wrapf(err, "invalid floor plan %s", f.path)
	}
	f.current.Store(p)
	f.metrics.RecordFloorplanLoad(true)
	slog.Info("floor plan loaded",
		"path", f.path,
		"tables", len(p.tables),
		"hours_rules", len(p.calendar))

	f.mu.Lock()
	listeners := append([]func(){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	return nil
}

// Parse decodes and validates a YAML floor plan.
func Parse(data []byte, v *validator.Validate) (*Plan, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errs.Wrap(err, "failed to decode yaml")
	}
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(file); err != nil {
		return nil, errs.Wrap(err, "validation failed")
	}
	return file.toPlan()
}

func (file File) toPlan() (*Plan, error) {
	seen := map[int]struct{}{}
	tables := make([]table.Table, 0, len(file.Tables))
	for _, spec := range file.Tables {
		if _, dup := seen[spec.ID]; dup {
			return nil, errs.Newf("duplicate table id %d", spec.ID)
		}
		seen[spec.ID] = struct{}{}
		t, err := table.New(spec.ID, spec.Seats)
		if err != nil {
			return nil, errs.Wrapf(err, "table %d", spec.ID)
		}
		tables = append(tables, t)
	}

	rules := make([]hours.Rule, 0, len(file.Hours))
	for _, spec := range file.Hours {
		rule := hours.Rule{Key: spec.Key, Closed: spec.Closed}
		if !spec.Closed {
			open, err := reservation.ParseTimeOfDay(spec.Open)
			if err != nil {
				return nil, errs.Wrapf(err, "hours %s open", spec.Key)
			}
			closing, err := reservation.ParseTimeOfDay(spec.Close)
			if err != nil {
				return nil, errs.Wrapf(err, "hours %s close", spec.Key)
			}
			rule.Open, rule.Close = open, closing
		}
		rules = append(rules, rule)
	}
	calendar, err := hours.NewCalendar(rules...)
	if err != nil {
		return nil, err
	}
	return &Plan{tables: tables, calendar: calendar}, nil
}

// NewPlan builds a plan from already constructed tables and rules.
func NewPlan(tables []table.Table, rules ...hours.Rule) (*Plan, error) {
	calendar, err := hours.NewCalendar(rules...)
	if err != nil {
		return nil, err
	}
	out := make([]table.Table, len(tables))
	copy(out, tables)
	return &Plan{tables: out, calendar: calendar}, nil
}

// Watch reloads the plan whenever the file changes until ctx is done.
// The parent directory is watched so that editors replacing the file are noticed.
func (f *Floorplan) Watch(ctx context.Context) error {
	if f.path == "" {
		return errs.New("floor plan has no backing file")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(err, "failed to create watcher")
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		return errs.Wrap(err, "failed to watch floor plan directory")
	}

	go f.processEvents(ctx, watcher)
	slog.Info("watching floor plan", "path", f.path)
	return nil
}

func (f *Floorplan) processEvents(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(f.path)
	var reloadTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			// debounce bursts of writes
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(reloadDelay, func() {
				if err := f.Reload(); err != nil {
					slog.Error("failed to reload floor plan, keeping previous", "path", f.path, "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("floor plan watcher error", "error", err)
		}
	}
}
