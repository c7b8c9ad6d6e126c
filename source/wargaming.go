package source

import (
	"context"
	"errors"
	"net/http"

	"github.com/IceflowRE/go-wargaming/v3/wargaming"
	"github.com/IceflowRE/go-wargaming/v3/wargaming/wows"
	"go.uber.org/zap"

	"github.com/wows-tools/wows-clan-sync/model"
)

var ErrUnknownRealm = errors.New("unknown wows realm/server")

func Realm(realmStr string) (wargaming.Realm, error) {
	switch realmStr {
	case "eu":
		return wargaming.RealmEu, nil
	case "na":
		return wargaming.RealmNa, nil
	case "asia":
		return wargaming.RealmAsia, nil
	default:
		return nil, ErrUnknownRealm
	}
}

// Wargaming looks clans up directly in the Wargaming API, for deployments
// that run without the API service in between.
type Wargaming struct {
	client *wargaming.Client
	realm  wargaming.Realm
	logger *zap.SugaredLogger
}

func NewWargaming(key string, realm string, logger *zap.SugaredLogger) (*Wargaming, error) {
	wgRealm, err := Realm(realm)
	if err != nil {
		return nil, err
	}
	return &Wargaming{
		client: wargaming.NewClient(key, &wargaming.ClientOptions{HTTPClient: &http.Client{Timeout: requestTimeout}}),
		realm:  wgRealm,
		logger: logger,
	}, nil
}

func (s *Wargaming) LookupTag(ctx context.Context, tag string) (model.Lookup, error) {
	s.logger.Debugf("looking up clan [%s] in the wargaming API", tag)
	limit := 100
	res, err := s.client.Wows.ClansList(ctx, s.realm, &wows.ClansListOptions{
		Fields: []string{"clan_id", "tag"},
		Search: wargaming.String(tag),
		Limit:  &limit,
	})
	if err != nil {
		return model.Lookup{}, err
	}

	// The search matches on prefixes; only an exact tag counts.
	for _, clan := range res {
		if clan == nil || clan.ClanId == nil || clan.Tag == nil {
			continue
		}
		if *clan.Tag == tag {
			return model.Present(model.Clan{ID: *clan.ClanId, Tag: *clan.Tag}), nil
		}
	}
	return model.Absent(), nil
}
