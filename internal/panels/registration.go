package panels

import (
	"reflect"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fatih/structs"
	"github.com/go-playground/validator/v10"

	"moff.io/dapp-demo/internal/i18n"
	"moff.io/dapp-demo/pkg/common"
	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
)

const MinPasswordLength = 6

type RegistrationForm struct {
	FullName        string `json:"fullName" structs:"full_name" validate:"required"`
	Email           string `json:"email" structs:"email" validate:"required,email"`
	Password        string `json:"password" structs:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" structs:"confirm_password" validate:"required"`
}

// Masked returns the form as a map safe to log.
func (f RegistrationForm) Masked() map[string]interface{} {
	m := structs.Map(f)
	for k, v := range m {
		if strings.Contains(k, "password") {
			m[k] = strings.Repeat("*", len(v.(string)))
		}
	}
	return m
}

type Registrar struct {
	node     *snowflake.Node
	validate *validator.Validate
	tr       *i18n.Translator
}

func NewRegistrar(nodeID int64, tr *i18n.Translator) (*Registrar, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrapf(err, "snowflake node %d", nodeID)
	}
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
	if tr == nil {
		tr = i18n.Default
	}
	return &Registrar{node: node, validate: validate, tr: tr}, nil
}

// Register checks the form and pretends to create the account.
func (r *Registrar) Register(form RegistrationForm) Result {
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	if err := r.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return failed(err.Error())
		}
		fe := fieldErrs[0]
		if fe.Tag() == "email" {
			return failed(r.tr.Sprintf(i18n.MsgInvalidEmail))
		}
		return failed(r.tr.Sprintf(i18n.MsgFieldRequired, fe.Field()))
	}
	if form.Password != form.ConfirmPassword {
		return failed(r.tr.Sprintf(i18n.MsgPasswordMismatch))
	}
	if len([]rune(form.Password)) < MinPasswordLength {
		return failed(r.tr.Sprintf(i18n.MsgPasswordTooShort, MinPasswordLength))
	}

	id := r.node.Generate()
	log.Infof("registration %s submitted: %s", id, common.MustGetJSONString(form.Masked()))
	return Result{OK: true, ID: id.String(), Message: r.tr.Sprintf(i18n.MsgRegistrationDone)}
}
