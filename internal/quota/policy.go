package quota

import (
	"fmt"
	"strings"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Policy selects which pools a debit may draw from and in what order.
// With AllowSplit false the whole amount must come from a single pool;
// with AllowSplit true each pool in order contributes what it can.
type Policy struct {
	Name       string
	Order      []domain.PoolKind
	GrantLabel string
	AllowSplit bool
}

// NormalizeLabel returns the form grant labels are stored and looked up under
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// NamedOnly debits only the given grant's per-user balance
func NamedOnly(label string) Policy {
	return Policy{Name: PolicyNameNamed, Order: []domain.PoolKind{domain.PoolNamed}, GrantLabel: NormalizeLabel(label)}
}

// EventThenTimed spends event credits first and takes the remainder from the timed pool
func EventThenTimed() Policy {
	return Policy{Name: PolicyNameEventThenTimed, Order: []domain.PoolKind{domain.PoolEvent, domain.PoolTimed}, AllowSplit: true}
}

// TimedOnly debits only the timed pool
func TimedOnly() Policy {
	return Policy{Name: PolicyNameTimed, Order: []domain.PoolKind{domain.PoolTimed}}
}

// EventOnly debits only event credits
func EventOnly() Policy {
	return Policy{Name: PolicyNameEvent, Order: []domain.PoolKind{domain.PoolEvent}}
}

// BestAvailable tries the named grant (when given), then event credits, then
// the timed pool, taking the whole amount from the first pool that can cover it.
func BestAvailable(label string) Policy {
	label = NormalizeLabel(label)
	order := []domain.PoolKind{domain.PoolEvent, domain.PoolTimed}
	if label != "" {
		order = append([]domain.PoolKind{domain.PoolNamed}, order...)
	}
	return Policy{Name: PolicyNameBest, Order: order, GrantLabel: label}
}

// ParsePolicy maps a request's policy name to a Policy. An empty name means best-available.
func ParsePolicy(name, grantLabel string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyNameBest:
		return BestAvailable(grantLabel), nil
	case PolicyNameNamed:
		if NormalizeLabel(grantLabel) == "" {
			return Policy{}, fmt.Errorf("%w: named policy requires a grant label", domain.ErrInvalidInput)
		}
		return NamedOnly(grantLabel), nil
	case PolicyNameEventThenTimed:
		return EventThenTimed(), nil
	case PolicyNameTimed:
		return TimedOnly(), nil
	case PolicyNameEvent:
		return EventOnly(), nil
	default:
		return Policy{}, fmt.Errorf("%w: %q", domain.ErrUnknownPolicy, name)
	}
}

func (p Policy) usesNamed() bool {
	for _, k := range p.Order {
		if k == domain.PoolNamed {
			return true
		}
	}
	return false
}

func (p Policy) namedOnly() bool {
	return len(p.Order) == 1 && p.Order[0] == domain.PoolNamed
}
