package ovs

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/patrickmn/go-cache"

	"github.com/projecteru2/ovsmap/configs"
	"github.com/projecteru2/ovsmap/pkg/log"
	"github.com/projecteru2/ovsmap/pkg/sh"
	"github.com/projecteru2/ovsmap/pkg/terrors"
)

const retryInterval = 500 * time.Millisecond

// Live queries a running host's tools through the shell.
//
// Identical queries within the cache TTL run once; stages that share
// a dump (flows and registers) hit the cache instead of the tool.
type Live struct {
	cfg   *configs.Config
	cache *cache.Cache
}

// NewLive .
func NewLive(cfg *configs.Config) *Live {
	ttl := cfg.QueryCacheTTL.Duration()
	return &Live{
		cfg:   cfg,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Query .
func (l *Live) Query(ctx context.Context, kind Kind, scope string) (string, error) {
	argv, err := l.command(kind, scope)
	if err != nil {
		return "", err
	}

	key := string(kind) + "|" + scope
	if out, hit := l.cache.Get(key); hit {
		return out.(string), nil
	}

	var out string
	run := func() error {
		qctx, cancel := context.WithTimeout(ctx, l.cfg.QueryTimeout.Duration())
		defer cancel()

		stdout, stderr, err := sh.ExecInOut(qctx, nil, nil, argv[0], argv[1:]...)
		if err != nil {
			return errors.Wrapf(terrors.ErrQueryFailed, "%s: %s: %s",
				strings.Join(argv, " "), err, strings.TrimSpace(string(stderr)))
		}
		out = string(stdout)
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), uint64(l.cfg.QueryRetries)),
		ctx)
	if err := backoff.Retry(run, bo); err != nil {
		log.WithFunc("ovs.Query").Warnf(ctx, "%s %s unavailable: %s", kind, scope, err)
		return "", err
	}

	l.cache.SetDefault(key, out)
	return out, nil
}

func (l *Live) command(kind Kind, scope string) ([]string, error) {
	switch kind {
	case BridgeList:
		return []string{l.cfg.OvsVsctl, "list-br"}, nil

	case BridgePortMap:
		if len(scope) == 0 {
			return nil, errors.Wrap(terrors.ErrScopeRequired, string(kind))
		}
		return []string{l.cfg.OvsOfctl, "show", scope}, nil

	case FlowDump, RegisterDump:
		// registers are pulled from the same dump the flows come from
		if len(scope) == 0 {
			return nil, errors.Wrap(terrors.ErrScopeRequired, string(kind))
		}
		return []string{l.cfg.OvsOfctl, "dump-flows", scope}, nil

	case PortVlanMap:
		return []string{l.cfg.OvsVsctl, "--columns=name,tag", "list", "Port"}, nil

	case InterfaceList:
		return []string{l.cfg.IPBin, "-o", "link", "show"}, nil

	case NamespaceList:
		return []string{l.cfg.IPBin, "netns", "list"}, nil

	case NamespaceInterfaces:
		if len(scope) == 0 {
			return nil, errors.Wrap(terrors.ErrScopeRequired, string(kind))
		}
		return []string{l.cfg.IPBin, "netns", "exec", scope, l.cfg.IPBin, "-o", "link", "show"}, nil

	case TunnelMetadata:
		return []string{l.cfg.OvsVsctl, "--columns=name,type,options,external_ids,mac_in_use", "list", "Interface"}, nil

	case ConntrackDump:
		if len(scope) == 0 || scope == "0" {
			return []string{l.cfg.ConntrackBin, "-L"}, nil
		}
		return []string{l.cfg.ConntrackBin, "-L", "-z", scope}, nil

	default:
		return nil, errors.Wrap(terrors.ErrUnknownQueryKind, string(kind))
	}
}
