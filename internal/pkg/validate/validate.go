package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	once  sync.Once
	trans ut.Translator
)

// Setup registers english messages on gin's validator and makes field names follow the
// json/form tag so messages read "email is a required field".
func Setup() {
	once.Do(func() {
		uni := ut.New(en.New())
		trans, _ = uni.GetTranslator("en")
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = entranslations.RegisterDefaultTranslations(v, trans)
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Message turns a binding error into one readable sentence. ok is false when err did not come
// from the validator, e.g. malformed JSON.
func Message(err error) (string, bool) {
	Setup()
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", false
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if trans != nil {
			msgs = append(msgs, fe.Translate(trans))
			continue
		}
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; "), true
}
