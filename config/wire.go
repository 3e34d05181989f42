package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/DavideSigurta/Donatio-sub000/contract"
	"github.com/DavideSigurta/Donatio-sub000/host"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// RefundPolicy turns the refunds section into a policy.
func (c *Config) RefundPolicy() contract.RefundPolicy {
	if c.Refunds.Policy == RefundsPooled {
		return contract.PooledRefunds{Pool: sdk.Address(c.Refunds.Pool)}
	}
	return contract.ProRataRefunds{}
}

// EngineOptions maps the config onto contract.Options.
func (c *Config) EngineOptions(log *slog.Logger) contract.Options {
	return contract.Options{
		VotingPeriod:       c.VotingPeriod(),
		GovernanceDisabled: !c.GovernanceEnabled,
		Factory:            sdk.Address(c.Factory).Normalize(),
		Asset:              sdk.Asset(c.Asset),
		Refunds:            c.RefundPolicy(),
		Logger:             log,
	}
}

// CreatorRegistry seeds admins and pre-approved creators.
func (c *Config) CreatorRegistry() *sdk.CreatorRegistry {
	admins := make([]sdk.Address, 0, len(c.Admins))
	for _, a := range c.Admins {
		admins = append(admins, sdk.Address(a).Normalize())
	}
	reg := sdk.NewCreatorRegistry(admins...)
	for _, a := range c.Creators {
		reg.Grant(sdk.Address(a).Normalize())
	}
	return reg
}

// Backend is the opened state plus whatever has to be closed afterwards.
type Backend struct {
	Store   *contract.Store
	Events  sdk.EventSink
	closers []func() error
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

// Open builds the configured state backend and event sinks. Events always go to the
// log; with redis.stream set they are published to that stream too.
func (c *Config) Open(ctx context.Context, log *slog.Logger) (*Backend, error) {
	b := &Backend{}
	sinks := sdk.MultiSink{host.SlogEvents{Log: log}}

	var rdb *redis.Client
	var persister contract.Persister
	switch c.State.Backend {
	case BackendMemory:
	case BackendFile:
		persister = host.NewFileStore(c.State.DSN)
	case BackendSQLite:
		s, err := host.OpenSQLite(c.State.DSN)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s.Close)
		persister = s
	case BackendRedis:
		client, err := host.OpenRedis(ctx, c.Redis.URL)
		if err != nil {
			return nil, err
		}
		rdb = client
		b.closers = append(b.closers, client.Close)
		persister = host.NewRedisStore(client, c.Redis.Key)
	default:
		return nil, fmt.Errorf("unknown state backend %q", c.State.Backend)
	}

	if c.Redis.Stream != "" && c.Redis.URL != "" {
		if rdb == nil {
			client, err := host.OpenRedis(ctx, c.Redis.URL)
			if err != nil {
				_ = b.Close()
				return nil, err
			}
			rdb = client
			b.closers = append(b.closers, client.Close)
		}
		sinks = append(sinks, host.NewRedisEvents(rdb, c.Redis.Stream, log))
	}
	b.Events = sinks

	if persister == nil {
		b.Store = contract.NewMemoryStore()
		return b, nil
	}
	store, err := contract.OpenStore(ctx, persister)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Store = store
	return b, nil
}
