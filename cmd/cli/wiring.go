package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"

	"github.com/kondukto-io/pinguard/bundle"
	"github.com/kondukto-io/pinguard/internal/core/port/guard"
	policyport "github.com/kondukto-io/pinguard/internal/core/port/policy"
	guardusecase "github.com/kondukto-io/pinguard/internal/core/usecase/guard"
	resolverrepo "github.com/kondukto-io/pinguard/internal/repository/resolver"
	"github.com/kondukto-io/pinguard/pkg/logger"
	"github.com/kondukto-io/pinguard/pkg/parser"
	"github.com/kondukto-io/pinguard/pkg/policy"
)

// newGuard builds the guard from the loaded configuration
func newGuard(ctx context.Context) (guard.UseCase, error) {
	var v = viper.GetViper()

	cfg := parser.ToPolicyConfig(v)
	table, err := policy.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	logger.Log.Debugf("policy: %+v", cfg)

	system := resolverrepo.NewSystem(v.GetString(parser.KeyNameserver), v.GetDuration(parser.KeyResolveTimeout))
	r, err := resolverrepo.ParseStatic(parser.ResolveEntries(v), system)
	if err != nil {
		return nil, err
	}

	var hostPolicy policyport.HostPolicy
	if data := parser.ToHostRulesData(v); len(data.DeniedHosts) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal host rules data: %w", err)
		}

		rules, err := policy.NewHostRules(bundle.Bundle, raw)
		if err != nil {
			return nil, err
		}
		rules.AddQuery(policy.DefaultQuery)

		if err := rules.Prepare(ctx); err != nil {
			return nil, err
		}

		hostPolicy = rules
	}

	return guardusecase.New(table, r, hostPolicy), nil
}
