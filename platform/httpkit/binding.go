package httpkit

import (
	"fmt"
	"sync"

	appvalidator "distancematrix/platform/validator"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterBindingValidators installs the shared validation rules on gin's
// binding engine. Safe to call more than once.
func RegisterBindingValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		err = appvalidator.RegisterOn(v)
	})
	return err
}
