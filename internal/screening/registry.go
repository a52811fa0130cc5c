package screening

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/role.schema.json
var roleSchema string

// RuleFile is the on-disk format of additional role tables.
type RuleFile struct {
	Roles []RoleConfig `json:"roles"`
}

// Registry resolves role IDs and job titles to evaluators.
type Registry struct {
	mu     sync.RWMutex
	roles  map[string]*Evaluator
	titles map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		roles:  map[string]*Evaluator{},
		titles: map[string]string{},
	}
}

// DefaultRegistry registers the built-in GCMS and Shopify roles. shopifyRuleset
// selects between the current and legacy Shopify tables.
func DefaultRegistry(shopifyRuleset string) (*Registry, error) {
	r := NewRegistry()
	for _, cfg := range []RoleConfig{GCMSConfig(), ShopifyConfigFor(shopifyRuleset)} {
		if err := r.Register(cfg); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register compiles cfg and adds it, replacing any role with the same ID.
func (r *Registry) Register(cfg RoleConfig) error {
	e, err := NewEvaluator(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for alias, id := range r.titles {
		if id == cfg.RoleID {
			delete(r.titles, alias)
		}
	}
	r.roles[cfg.RoleID] = e
	r.titles[NormalizeString(cfg.RoleID)] = cfg.RoleID
	if cfg.Title != "" {
		r.titles[NormalizeString(cfg.Title)] = cfg.RoleID
	}
	for _, t := range cfg.JobTitles {
		r.titles[NormalizeString(t)] = cfg.RoleID
	}
	return nil
}

// Role returns the evaluator registered under id.
func (r *Registry) Role(id string) (*Evaluator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.roles[id]
	return e, ok
}

// ForJobTitle resolves a candidate's job title case-insensitively. An exact
// alias wins; otherwise the longest alias contained in the title is used.
func (r *Registry) ForJobTitle(title string) (*Evaluator, bool) {
	t := NormalizeString(title)
	if t == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.titles[t]; ok {
		return r.roles[id], true
	}
	best := ""
	for alias := range r.titles {
		if !strings.Contains(t, alias) {
			continue
		}
		// Ties on length go to the lexically smaller alias so map order never leaks.
		if len(alias) > len(best) || (len(alias) == len(best) && alias < best) {
			best = alias
		}
	}
	if best == "" {
		return nil, false
	}
	return r.roles[r.titles[best]], true
}

// Roles returns every registered evaluator ordered by role ID.
func (r *Registry) Roles() []*Evaluator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Evaluator, 0, len(r.roles))
	for _, e := range r.roles {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoleID() < out[j].RoleID() })
	return out
}

// LoadRoleFile reads a rule file and registers every role in it.
func (r *Registry) LoadRoleFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read rule file: %w", err)
	}
	cfgs, err := ParseRuleFile(data)
	if err != nil {
		return err
	}
	for _, cfg := range cfgs {
		if err := r.Register(cfg); err != nil {
			return err
		}
	}
	return nil
}

// ParseRuleFile validates data against the role schema and decodes it. Schema
// violations are reported as a *ConfigurationError.
func ParseRuleFile(data []byte) ([]RoleConfig, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(roleSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, &ConfigurationError{RoleID: "(rule file)", Problems: []string{err.Error()}}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			problems = append(problems, fmt.Sprintf("%s: %s", field, desc.Description()))
		}
		return nil, &ConfigurationError{RoleID: "(rule file)", Problems: problems}
	}

	var file RuleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &ConfigurationError{RoleID: "(rule file)", Problems: []string{err.Error()}}
	}
	return file.Roles, nil
}
