package bidrequest

import (
	"sort"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/schema"
)

// IDDomain names a distinguished user id domain.
type IDDomain string

const (
	// IDProvider is the id assigned by the bidder or its data provider.
	IDProvider IDDomain = "prov"
	// IDExchange is the id assigned by the exchange.
	IDExchange IDDomain = "xchg"
)

// UserIds maps id domains to the user's id in that domain. The provider and exchange ids are
// mirrored into their own fields.
type UserIds struct {
	ids        map[string]string
	ProviderID string
	ExchangeID string
}

// Add registers id under domain. Adding a domain twice is an error, whatever the id, so an
// exchange user can never be mapped to two different users.
func (u *UserIds) Add(domain string, id string) error {
	if _, ok := u.ids[domain]; ok {
		return &errortypes.DuplicateIdentity{Domain: domain}
	}
	if u.ids == nil {
		u.ids = make(map[string]string)
	}
	u.ids[domain] = id
	switch IDDomain(domain) {
	case IDProvider:
		u.ProviderID = id
	case IDExchange:
		u.ExchangeID = id
	}
	return nil
}

// AddDomain is Add for a distinguished domain.
func (u *UserIds) AddDomain(domain IDDomain, id string) error {
	return u.Add(string(domain), id)
}

// Get returns the id registered under domain.
func (u *UserIds) Get(domain string) (string, bool) {
	id, ok := u.ids[domain]
	return id, ok
}

// Len returns the number of registered domains.
func (u *UserIds) Len() int {
	return len(u.ids)
}

// Domains returns the registered domains in sorted order.
func (u *UserIds) Domains() []string {
	domains := make([]string, 0, len(u.ids))
	for domain := range u.ids {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return domains
}

const userIdsVersion = 0

type userIdsDescription struct{}

// ParseJSON adds members one by one, so a payload naming a domain twice is rejected.
func (userIdsDescription) ParseJSON(ctx *schema.ParseContext, data []byte, vt jsonparser.ValueType, v *UserIds) error {
	*v = UserIds{}
	return schema.ForEachMember(ctx, data, vt, func(domain string, value []byte, vt jsonparser.ValueType) error {
		var id string
		if err := schema.ID().ParseJSON(ctx, value, vt, &id); err != nil {
			return err
		}
		return v.Add(domain, id)
	})
}

func (userIdsDescription) PrintJSON(s *jsoniter.Stream, v *UserIds) {
	schema.Map(schema.String()).PrintJSON(s, &v.ids)
}

func (userIdsDescription) IsDefault(v *UserIds) bool {
	return v.Len() == 0
}

func (userIdsDescription) WriteBinary(w *schema.BinaryWriter, v *UserIds) {
	w.WriteVarint(userIdsVersion)
	schema.Map(schema.String()).WriteBinary(w, &v.ids)
}

func (userIdsDescription) ReadBinary(r *schema.BinaryReader, v *UserIds) error {
	if err := r.ReadVersion("UserIds", userIdsVersion); err != nil {
		return err
	}
	var ids map[string]string
	if err := schema.Map(schema.String()).ReadBinary(r, &ids); err != nil {
		return err
	}
	*v = UserIds{}
	for domain, id := range ids {
		if err := v.Add(domain, id); err != nil {
			return err
		}
	}
	return nil
}
