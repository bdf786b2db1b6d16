package analysis

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/model"
	"github.com/sells-group/lead-intel/pkg/houjin"
)

// ErrNotFound is returned when no company can be identified.
var ErrNotFound = eris.New("analysis: company not found")

// IdentityResolver turns a lookup key into a company profile.
type IdentityResolver interface {
	Resolve(ctx context.Context, name, domain string) (model.CompanyProfile, error)
}

// RegistryResolver resolves names against the corporate-number registry. A
// nil client, an empty result or a registry error all degrade to a
// name-only profile.
type RegistryResolver struct {
	client houjin.Client
}

// NewRegistryResolver creates a resolver. client may be nil.
func NewRegistryResolver(client houjin.Client) *RegistryResolver {
	return &RegistryResolver{client: client}
}

// Resolve implements IdentityResolver. Only an empty key is ErrNotFound.
func (r *RegistryResolver) Resolve(ctx context.Context, name, domain string) (model.CompanyProfile, error) {
	name = strings.TrimSpace(name)
	domain = strings.TrimSpace(domain)
	key := name
	if key == "" {
		key = domain
	}
	if key == "" {
		return model.CompanyProfile{}, ErrNotFound
	}

	profile := model.CompanyProfile{
		Name:          key,
		Domain:        domain,
		ListingStatus: model.ListingUnknown,
	}
	if domain != "" {
		profile.URL = "https://" + domain
	}
	if r.client == nil || name == "" {
		return profile, nil
	}

	corps, err := r.client.SearchByName(ctx, name)
	if err != nil {
		zap.L().Warn("analysis: registry lookup failed, using name only",
			zap.String("name", name),
			zap.Error(err),
		)
		return profile, nil
	}
	corp, ok := pickCorporation(corps, name)
	if !ok {
		return profile, nil
	}

	profile.Name = corp.Name
	profile.CorporateNumber = corp.CorporateNumber
	profile.Address = corp.Address()
	return profile, nil
}

// pickCorporation prefers an active exact-name match, then any active entry.
func pickCorporation(corps []houjin.Corporation, name string) (houjin.Corporation, bool) {
	var fallback *houjin.Corporation
	for i := range corps {
		c := corps[i]
		if !c.Active() {
			continue
		}
		if c.Name == name {
			return c, true
		}
		if fallback == nil {
			fallback = &corps[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return houjin.Corporation{}, false
}
