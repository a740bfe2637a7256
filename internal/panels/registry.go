package panels

import (
	"context"
	"strings"
	"time"

	"moff.io/dapp-demo/internal/i18n"
	"moff.io/dapp-demo/pkg/log"
)

const (
	RegistryRegistered = "registered"
	RegistryPending    = "pending"
	RegistryNotFound   = "not_found"
)

// Registry answers oracle registration lookups with canned results.
type Registry struct {
	delay time.Duration
	tr    *i18n.Translator
}

func NewRegistry(delay time.Duration, tr *i18n.Translator) *Registry {
	if tr == nil {
		tr = i18n.Default
	}
	return &Registry{delay: delay, tr: tr}
}

func (r *Registry) Check(ctx context.Context, id string) (Result, error) {
	if strings.TrimSpace(id) == "" {
		return failed(r.tr.Sprintf(i18n.MsgRegistryEmptyID)), nil
	}
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	status := lookupStatus(id)
	log.Debugf("registry lookup %q: %s", id, status)
	switch status {
	case RegistryRegistered:
		return Result{OK: true, ID: id, Status: status, Message: r.tr.Sprintf(i18n.MsgRegistryRegistered, id)}, nil
	case RegistryPending:
		return Result{OK: true, ID: id, Status: status, Message: r.tr.Sprintf(i18n.MsgRegistryPending, id)}, nil
	default:
		return Result{ID: id, Status: status, Message: r.tr.Sprintf(i18n.MsgRegistryNotFound, id)}, nil
	}
}

func lookupStatus(id string) string {
	switch lower := strings.ToLower(id); {
	case lower == "registrado" || lower == "registered" || strings.HasPrefix(id, "0xRegistrado"):
		return RegistryRegistered
	case lower == "pendente" || lower == "pending":
		return RegistryPending
	default:
		return RegistryNotFound
	}
}
