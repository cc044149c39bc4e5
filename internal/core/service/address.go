package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/internal/core/port"
)

func CanonicalAddress(address string) string {
	return strings.ToLower(address)
}

// AddressResolver maps addresses to their canonical EmailAddress row, creating
// missing rows inside tx. Use one resolver per normalization pass: it caches
// what it resolved so an address listed twice is only inserted once.
type AddressResolver struct {
	tx       port.ReportsTx
	resolved map[string]domain.EmailAddress
}

func NewAddressResolver(tx port.ReportsTx) *AddressResolver {
	return &AddressResolver{
		tx:       tx,
		resolved: make(map[string]domain.EmailAddress),
	}
}

func (r *AddressResolver) Resolve(ctx context.Context, address string) (domain.EmailAddress, error) {
	key := CanonicalAddress(address)
	if resolved, ok := r.resolved[key]; ok {
		return resolved, nil
	}

	existing, err := r.tx.GetAddressByKey(ctx, key)
	switch {
	case err == nil:
		r.resolved[key] = *existing
		return *existing, nil
	case !errors.Is(err, domain.ErrAddressNotFound):
		return domain.EmailAddress{}, fmt.Errorf("failed to look up address %q: %w", key, err)
	}

	created := domain.EmailAddress{Email: key}
	if err := r.tx.InsertAddress(ctx, created); err != nil {
		return domain.EmailAddress{}, fmt.Errorf("failed to insert address %q: %w", key, err)
	}
	r.resolved[key] = created

	return created, nil
}

func (r *AddressResolver) ResolveAll(ctx context.Context, addresses []string) ([]domain.EmailAddress, error) {
	resolved := make([]domain.EmailAddress, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, address := range addresses {
		handle, err := r.Resolve(ctx, address)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[handle.Email]; dup {
			continue
		}
		seen[handle.Email] = struct{}{}
		resolved = append(resolved, handle)
	}
	return resolved, nil
}

// Preload resolves addresses in canonical sorted order, without duplicates.
// Later Resolve calls for the same addresses are served from the cache.
func (r *AddressResolver) Preload(ctx context.Context, addresses []string) error {
	keys := make([]string, 0, len(addresses))
	for _, address := range addresses {
		keys = append(keys, CanonicalAddress(address))
	}
	slices.Sort(keys)

	for _, key := range slices.Compact(keys) {
		if _, err := r.Resolve(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
