package i18n

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestEnglishIsDefault(t *testing.T) {
	for _, locale := range []string{"", "en", "xx-invalid", "ja"} {
		tr := New(locale)
		assert.Equal(t, language.English, tr.Tag(), locale)
		assert.Equal(t, "provider not detected", tr.Sprintf(MsgProviderAbsent))
	}
}

func TestBrazilianPortuguese(t *testing.T) {
	tr := New("pt-BR")
	assert.Equal(t, language.BrazilianPortuguese, tr.Tag())
	assert.Equal(t, "As senhas não coincidem.", tr.Sprintf(MsgPasswordMismatch))
	assert.Equal(t, "Erro ao conectar: boom", tr.Sprintf(MsgRequestFailed, errors.New("boom")))
	assert.Equal(t, "A senha deve ter pelo menos 6 caracteres.", tr.Sprintf(MsgPasswordTooShort, 6))
}

func TestEveryMessageTranslated(t *testing.T) {
	for _, key := range []string{
		MsgProviderAbsent, MsgUserRejected, MsgRequestFailed, MsgDisconnected, MsgWalletDisconnected,
		MsgFieldRequired, MsgInvalidEmail, MsgPasswordMismatch, MsgPasswordTooShort, MsgRegistrationDone,
		MsgNoFileSelected, MsgFileTooLarge, MsgFileTypeRejected, MsgUploading, MsgUploadDone,
		MsgRegistryEmptyID, MsgRegistryRegistered, MsgRegistryPending,
		MsgRegistryNotFound, MsgUnknownChain,
	} {
		_, ok := brazilianPortuguese[key]
		assert.True(t, ok, key)
	}
}
