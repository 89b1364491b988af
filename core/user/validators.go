package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/darasa/core"
)

// password policy
var (
	pwdMinLen     = 6
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

func init() {
	core.Validate.RegisterStructValidation(pwdStructValidation, NewUser{})
	core.Validate.RegisterStructValidation(pwdStructValidation, CompleteProfile{})
	core.Validate.RegisterStructValidation(pwdStructValidation, ResetUserPassword{})

	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

// pwdStructValidation applies the password policy to any payload carrying a
// new password, checking similarity against the user attributes it carries.
func pwdStructValidation(sl validator.StructLevel) {
	switch data := sl.Current().Interface().(type) {
	case NewUser:
		validatePassword(data.Password, sl, data.Name, data.Email)
	case CompleteProfile:
		validatePassword(data.Password, sl, data.Name)
	case ResetUserPassword:
		validatePassword(data.Password, sl)
	}
}

func validatePassword(pwd string, sl validator.StructLevel, usrAttrs ...string) {
	if pwd == "" {
		return // `required` reports it
	}

	reportError := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if len(pwd) < pwdMinLen {
		reportError(pwdMinLenTag)
	}
	if strings.IndexFunc(pwd, unicode.IsSpace) >= 0 {
		reportError(pwdNoSpaceTag)
	}

	allNum := true
	for _, r := range pwd {
		if !unicode.IsDigit(r) {
			allNum = false
			break
		}
	}
	if allNum {
		reportError(pwdNotAllNumTag)
	}

	pass := strings.ToLower(pwd)
	for _, attr := range usrAttrs {
		attr = strings.ToLower(attr)
		if attr == "" {
			continue
		}
		sim := difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
		if sim >= pwdMaxSim {
			reportError(pwdAttrSimTag)
			return
		}
	}
}
