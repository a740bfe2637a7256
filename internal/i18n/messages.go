// Package i18n renders user facing descriptors in the configured locale.
// Message keys are the English texts, other locales are registered in the
// x/text catalog at init.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Wallet session descriptors.
const (
	MsgProviderAbsent     = "provider not detected"
	MsgUserRejected       = "connection rejected by user"
	MsgRequestFailed      = "connection failed: %v"
	MsgDisconnected       = "disconnected"
	MsgWalletDisconnected = "wallet disconnected, please reconnect"
)

// Panel messages.
const (
	MsgFieldRequired      = "field %s is required"
	MsgInvalidEmail       = "invalid email address"
	MsgPasswordMismatch   = "passwords do not match"
	MsgPasswordTooShort   = "password must be at least %d characters"
	MsgRegistrationDone   = "registration completed (simulation)"
	MsgNoFileSelected     = "no file selected"
	MsgFileTooLarge       = "file too large, limit is %dMB"
	MsgFileTypeRejected   = "file type %s not accepted"
	MsgUploading          = "uploading %s..."
	MsgUploadDone         = "\"%s\" uploaded successfully (simulation)"
	MsgRegistryEmptyID    = "please enter an id or address to check"
	MsgRegistryRegistered = "\"%s\" is registered in the oracle registry (simulation)"
	MsgRegistryPending    = "registration for \"%s\" is pending (simulation)"
	MsgRegistryNotFound   = "\"%s\" not found or not registered (simulation)"
	MsgUnknownChain       = "Unknown Chain (%s)"
)

var brazilianPortuguese = map[string]string{
	MsgProviderAbsent:     "Provedor de carteira não detectado. Por favor, instale a extensão MetaMask.",
	MsgUserRejected:       "Conexão rejeitada pelo usuário.",
	MsgRequestFailed:      "Erro ao conectar: %v",
	MsgDisconnected:       "Carteira desconectada.",
	MsgWalletDisconnected: "Carteira desconectada. Por favor, conecte-se novamente.",

	MsgFieldRequired:      "O campo %s é obrigatório.",
	MsgInvalidEmail:       "Email inválido.",
	MsgPasswordMismatch:   "As senhas não coincidem.",
	MsgPasswordTooShort:   "A senha deve ter pelo menos %d caracteres.",
	MsgRegistrationDone:   "Cadastro realizado com sucesso! (Simulação)",
	MsgNoFileSelected:     "Nenhum arquivo selecionado.",
	MsgFileTooLarge:       "Arquivo muito grande. Limite de %dMB.",
	MsgFileTypeRejected:   "Tipo de arquivo %s não aceito.",
	MsgUploading:          "Enviando %s...",
	MsgUploadDone:         "\"%s\" enviado com sucesso! (Simulação)",
	MsgRegistryEmptyID:    "Por favor, insira um ID ou endereço para verificar.",
	MsgRegistryRegistered: "\"%s\" está registrado no registro de oráculos. (Simulação)",
	MsgRegistryPending:    "Registro para \"%s\" está pendente. (Simulação)",
	MsgRegistryNotFound:   "\"%s\" não encontrado ou não registrado. (Simulação)",
	MsgUnknownChain:       "Rede desconhecida (%s)",
}

var supported = []language.Tag{language.English, language.BrazilianPortuguese}

var matcher = language.NewMatcher(supported)

func init() {
	for key, msg := range brazilianPortuguese {
		if err := message.SetString(language.BrazilianPortuguese, key, msg); err != nil {
			panic(err)
		}
	}
}

// Translator formats message keys for one locale. The zero value is not
// usable, build it with New.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for the closest supported match of locale,
// English when locale is empty or unknown.
func New(locale string) *Translator {
	tag := language.English
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			_, idx, confidence := matcher.Match(parsed)
			if confidence != language.No {
				tag = supported[idx]
			}
		}
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag)}
}

// Default is the English translator.
var Default = New("")

func (t *Translator) Tag() language.Tag {
	return t.tag
}

func (t *Translator) Sprintf(key string, args ...interface{}) string {
	return t.printer.Sprintf(key, args...)
}
