package util

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ForbiddenUsernameChars 标点符号与空格
const ForbiddenUsernameChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ "

var reservedUsernames = map[string]bool{
	"admin":         true,
	"administrator": true,
}

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验器注册自定义标签
func RegisterValidators() {
	registerOnce.Do(func() {
		// 未知的 JSON 字段按 400 处理
		binding.EnableDecoderDisallowUnknownFields = true

		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name == "" {
					name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
				}
				return name
			})
			v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
				return UsernameCharsOK(fl.Field().String()) && !IsReservedUsername(fl.Field().String())
			})
		}
	})
}

func UsernameCharsOK(username string) bool {
	return !strings.ContainsAny(username, ForbiddenUsernameChars)
}

func IsReservedUsername(username string) bool {
	return reservedUsernames[strings.ToLower(username)]
}

// EmailShapeOK local@domain.tld，域名部分至少 5 个字符
func EmailShapeOK(email string) bool {
	if strings.Contains(email, " ") || !strings.Contains(email, "@") {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	return strings.Contains(domain, ".") && len(domain) >= 5
}

// FieldMessages 把校验错误翻译成字段级提示
func FieldMessages(err error) FormErrors {
	errs := FormErrors{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("form", err.Error())
		return errs
	}
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			errs.Add(field, "This field is required.")
		case "min", "max":
			errs.Add(field, "Field must be between the allowed length bounds ("+fe.Tag()+" "+fe.Param()+").")
		case "email":
			errs.Add(field, "Invalid email address.")
		case "eqfield":
			errs.Add(field, "Field must be equal to "+strings.ToLower(fe.Param())+".")
		case "username":
			errs.Add(field, "Forbidden characters or name. Do not use punctuation, spaces, admin or administrator.")
		case "oneof":
			errs.Add(field, "Not a valid choice.")
		default:
			errs.Add(field, "Invalid value.")
		}
	}
	return errs
}
