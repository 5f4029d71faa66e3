// Package file stores profile state and saved plans as one YAML document per
// profile in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/craftplan/internal/plan"
)

const formatVersion = 1

var profilePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ErrInvalidProfile is returned for profile names that cannot be used as a
// file name.
var ErrInvalidProfile = errors.New("invalid profile name")

type stateDoc struct {
	CraftList  map[string]int `yaml:"craft_list"`
	Inventory  map[string]int `yaml:"inventory"`
	Selections map[string]int `yaml:"selections"`
}

type planDoc struct {
	ID                 string         `yaml:"id"`
	Name               string         `yaml:"name"`
	Kind               string         `yaml:"kind"`
	Items              map[string]int `yaml:"items"`
	Recipes            map[string]int `yaml:"recipes,omitempty"`
	CatalogFingerprint string         `yaml:"catalog_fingerprint,omitempty"`
	CreatedAt          time.Time      `yaml:"created_at"`
}

type profileDoc struct {
	FormatVersion int       `yaml:"format_version"`
	State         stateDoc  `yaml:"state"`
	Plans         []planDoc `yaml:"plans"`
}

// Store implements session.Store on the local filesystem. It is safe for
// concurrent use within one process.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore returns a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(profile string) (string, error) {
	if !profilePattern.MatchString(profile) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProfile, profile)
	}
	return filepath.Join(s.dir, profile+".yaml"), nil
}

func (s *Store) read(profile string) (profileDoc, error) {
	p, err := s.path(profile)
	if err != nil {
		return profileDoc{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return profileDoc{FormatVersion: formatVersion}, nil
		}
		return profileDoc{}, fmt.Errorf("reading %s: %w", p, err)
	}
	var doc profileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return profileDoc{}, fmt.Errorf("parsing %s: %w", p, err)
	}
	if doc.FormatVersion > formatVersion {
		return profileDoc{}, fmt.Errorf("%s: unsupported format version %d", p, doc.FormatVersion)
	}
	return doc, nil
}

// write replaces the profile document atomically via a temp file and rename.
func (s *Store) write(profile string, doc profileDoc) error {
	p, err := s.path(profile)
	if err != nil {
		return err
	}
	doc.FormatVersion = formatVersion
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encoding profile %q: %w", profile, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+profile+"-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replacing %s: %w", p, err)
	}
	return nil
}

// LoadState implements session.StateStore.
func (s *Store) LoadState(_ context.Context, profile string) (plan.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(profile)
	if err != nil {
		return plan.State{}, err
	}
	st := plan.State{
		CraftList:  plan.Quantities(doc.State.CraftList),
		Inventory:  plan.Quantities(doc.State.Inventory),
		Selections: plan.Selections(doc.State.Selections),
	}
	st.Normalize()
	return st, nil
}

// SaveState implements session.StateStore.
func (s *Store) SaveState(_ context.Context, profile string, st plan.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(profile)
	if err != nil {
		return err
	}
	doc.State = stateDoc{
		CraftList:  st.CraftList.Clone(),
		Inventory:  st.Inventory.Clone(),
		Selections: st.Selections.Clone(),
	}
	return s.write(profile, doc)
}

// SavePlan implements session.PlanStore.
func (s *Store) SavePlan(_ context.Context, profile string, p plan.Saved) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(profile)
	if err != nil {
		return err
	}
	pd := planDoc{
		ID:                 p.ID.String(),
		Name:               p.Name,
		Kind:               string(p.Kind),
		Items:              p.Items.Clone(),
		Recipes:            p.Recipes.Clone(),
		CatalogFingerprint: p.CatalogFingerprint,
		CreatedAt:          p.CreatedAt,
	}
	replaced := false
	for i := range doc.Plans {
		if doc.Plans[i].Kind == pd.Kind && doc.Plans[i].Name == pd.Name {
			doc.Plans[i] = pd
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Plans = append(doc.Plans, pd)
	}
	return s.write(profile, doc)
}

// GetPlan implements session.PlanStore.
func (s *Store) GetPlan(_ context.Context, profile string, kind plan.Kind, name string) (plan.Saved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(profile)
	if err != nil {
		return plan.Saved{}, err
	}
	for _, pd := range doc.Plans {
		if pd.Kind == string(kind) && pd.Name == name {
			return toSaved(pd)
		}
	}
	return plan.Saved{}, fmt.Errorf("%s plan %q: %w", kind, name, plan.ErrPlanNotFound)
}

// ListPlans implements session.PlanStore.
func (s *Store) ListPlans(_ context.Context, profile string, kind plan.Kind) ([]plan.Saved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(profile)
	if err != nil {
		return nil, err
	}
	var out []plan.Saved
	for _, pd := range doc.Plans {
		if pd.Kind != string(kind) {
			continue
		}
		sp, err := toSaved(pd)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeletePlan implements session.PlanStore.
func (s *Store) DeletePlan(_ context.Context, profile string, kind plan.Kind, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(profile)
	if err != nil {
		return err
	}
	for i, pd := range doc.Plans {
		if pd.Kind == string(kind) && pd.Name == name {
			doc.Plans = append(doc.Plans[:i], doc.Plans[i+1:]...)
			return s.write(profile, doc)
		}
	}
	return fmt.Errorf("%s plan %q: %w", kind, name, plan.ErrPlanNotFound)
}

func toSaved(pd planDoc) (plan.Saved, error) {
	id, err := uuid.Parse(pd.ID)
	if err != nil {
		return plan.Saved{}, fmt.Errorf("plan %q has invalid id %q: %w", pd.Name, pd.ID, err)
	}
	kind, err := plan.ParseKind(pd.Kind)
	if err != nil {
		return plan.Saved{}, fmt.Errorf("plan %q: %w", pd.Name, err)
	}
	return plan.Saved{
		ID:                 id,
		Name:               pd.Name,
		Kind:               kind,
		Items:              plan.Quantities(pd.Items).Clone(),
		Recipes:            plan.Selections(pd.Recipes).Clone(),
		CatalogFingerprint: pd.CatalogFingerprint,
		CreatedAt:          pd.CreatedAt,
	}, nil
}
