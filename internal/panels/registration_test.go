package panels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moff.io/dapp-demo/internal/i18n"
)

func validForm() RegistrationForm {
	return RegistrationForm{
		FullName:        "Ana Souza",
		Email:           "ana@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestRegister(t *testing.T) {
	r, err := NewRegistrar(1, nil)
	require.NoError(t, err)

	res := r.Register(validForm())
	assert.True(t, res.OK)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "registration completed (simulation)", res.Message)

	other := r.Register(validForm())
	assert.NotEqual(t, res.ID, other.ID)
}

func TestRegisterValidation(t *testing.T) {
	r, err := NewRegistrar(1, nil)
	require.NoError(t, err)

	cases := []struct {
		name   string
		modify func(f *RegistrationForm)
		want   string
	}{
		{"missing name", func(f *RegistrationForm) { f.FullName = "  " }, "field fullName is required"},
		{"bad email", func(f *RegistrationForm) { f.Email = "not-an-email" }, "invalid email address"},
		{"mismatch", func(f *RegistrationForm) { f.ConfirmPassword = "secret2" }, "passwords do not match"},
		{"short", func(f *RegistrationForm) { f.Password, f.ConfirmPassword = "abc", "abc" }, "password must be at least 6 characters"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			form := validForm()
			c.modify(&form)
			res := r.Register(form)
			assert.False(t, res.OK)
			assert.Empty(t, res.ID)
			assert.Equal(t, c.want, res.Message)
		})
	}
}

func TestRegisterTranslated(t *testing.T) {
	r, err := NewRegistrar(1, i18n.New("pt-BR"))
	require.NoError(t, err)
	form := validForm()
	form.ConfirmPassword = "other12"
	assert.Equal(t, "As senhas não coincidem.", r.Register(form).Message)
}

func TestNewRegistrarRejectsBadNode(t *testing.T) {
	_, err := NewRegistrar(-1, nil)
	assert.Error(t, err)
}

func TestMaskedForm(t *testing.T) {
	m := validForm().Masked()
	assert.Equal(t, "*******", m["password"])
	assert.Equal(t, "*******", m["confirm_password"])
	assert.Equal(t, "ana@example.com", m["email"])
}
