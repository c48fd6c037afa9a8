package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
	"github.com/open-policy-agent/opa/util"

	"github.com/kondukto-io/pinguard/internal/core/domain"
	"github.com/kondukto-io/pinguard/pkg/logger"
)

// DefaultQuery is the rule evaluated by the embedded bundle
const DefaultQuery = "data.pinguard.allow"

// HostRules evaluates rego policies against resolved targets. In OPA,
// decisions are made by comparing "policy" (rego modules) and "data" (JSON).
// Call Prepare before sharing a HostRules between goroutines.
type HostRules struct {
	modules  map[string]string
	data     map[string]interface{}
	query    string
	prepared *rego.PreparedEvalQuery
}

// NewHostRules loads every .rego file of bundleFS and the JSON data document
func NewHostRules(bundleFS fs.FS, data []byte) (*HostRules, error) {
	var modules = make(map[string]string)
	err := fs.WalkDir(bundleFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".rego") {
			return nil
		}

		content, err := fs.ReadFile(bundleFS, path)
		if err != nil {
			return fmt.Errorf("failed to read module [%s]: %w", path, err)
		}
		modules[path] = string(content)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load policy bundle: %w", err)
	}

	if len(modules) == 0 {
		return nil, errors.New("policy bundle has no rego module")
	}

	var store = make(map[string]interface{})
	if len(bytes.TrimSpace(data)) > 0 {
		if err := util.UnmarshalJSON(data, &store); err != nil {
			return nil, fmt.Errorf("failed to parse policy data: %w", err)
		}
	}

	return &HostRules{
		modules: modules,
		data:    store,
		query:   DefaultQuery,
	}, nil
}

// AddQuery overrides the evaluated query. It must be called before Prepare.
func (p *HostRules) AddQuery(query string) {
	p.query = query
	p.prepared = nil
}

// Prepare compiles the modules and the query
func (p *HostRules) Prepare(ctx context.Context) error {
	var options = []func(*rego.Rego){
		rego.Query(p.query),
		rego.Store(inmem.NewFromObject(p.data)),
	}
	for name, module := range p.modules {
		options = append(options, rego.Module(name, module))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare query [%s]: %w", p.query, err)
	}

	p.prepared = &prepared
	logger.Log.Debugf("host rules prepared: %d module(s), query %s", len(p.modules), p.query)

	return nil
}

// Eval evaluates the prepared query with a raw JSON input document
func (p *HostRules) Eval(ctx context.Context, input []byte) (bool, error) {
	if p.prepared == nil {
		if err := p.Prepare(ctx); err != nil {
			return false, err
		}
	}

	var doc interface{}
	if err := util.UnmarshalJSON(input, &doc); err != nil {
		return false, fmt.Errorf("failed to parse policy input: %w", err)
	}

	rs, err := p.prepared.Eval(ctx, rego.EvalInput(doc))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate query [%s]: %w", p.query, err)
	}

	return rs.Allowed(), nil
}

// AllowTarget evaluates the rules for a single resolved target
func (p *HostRules) AllowTarget(ctx context.Context, input domain.HostRulesInput) (bool, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return false, fmt.Errorf("failed to marshal policy input: %w", err)
	}

	return p.Eval(ctx, raw)
}
