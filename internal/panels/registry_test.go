package panels

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moff.io/dapp-demo/internal/i18n"
)

func TestRegistryCheck(t *testing.T) {
	r := NewRegistry(time.Millisecond, nil)
	cases := []struct {
		id     string
		status string
		ok     bool
	}{
		{"registrado", RegistryRegistered, true},
		{"REGISTRADO", RegistryRegistered, true},
		{"Registered", RegistryRegistered, true},
		{"0xRegistrado42", RegistryRegistered, true},
		{"0xregistrado42", RegistryNotFound, false},
		{"pendente", RegistryPending, true},
		{"Pending", RegistryPending, true},
		{"0x123", RegistryNotFound, false},
	}
	for _, c := range cases {
		res, err := r.Check(context.Background(), c.id)
		require.NoError(t, err)
		assert.Equal(t, c.status, res.Status, c.id)
		assert.Equal(t, c.ok, res.OK, c.id)
		assert.Contains(t, res.Message, c.id)
	}
}

func TestRegistryMessages(t *testing.T) {
	r := NewRegistry(0, nil)
	res, _ := r.Check(context.Background(), "pendente")
	assert.Equal(t, `registration for "pendente" is pending (simulation)`, res.Message)

	res, _ = r.Check(context.Background(), "   ")
	assert.False(t, res.OK)
	assert.Empty(t, res.Status)
	assert.Equal(t, "please enter an id or address to check", res.Message)

	pt := NewRegistry(0, i18n.New("pt-BR"))
	res, _ = pt.Check(context.Background(), "xyz")
	assert.Equal(t, `"xyz" não encontrado ou não registrado. (Simulação)`, res.Message)
}

func TestRegistryCanceled(t *testing.T) {
	r := NewRegistry(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Check(ctx, "registrado")
	assert.ErrorIs(t, err, context.Canceled)
}
